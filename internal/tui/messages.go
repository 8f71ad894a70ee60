package tui

import (
	"ghtrend/internal/trending"
)

type sectionLoadedMsg struct {
	language string
	period   trending.Period
	repos    []trending.Repository
}

type sectionErrMsg struct {
	language string
	period   trending.Period
	err      error
}

type preloadDoneMsg struct {
	errs []error
}

type updateNoticeMsg struct {
	latest string
}
