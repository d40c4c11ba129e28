package tui

import "github.com/aalvaropc/dfkit/internal/domain"

type fileStartedMsg struct {
	path string
}

type fileDoneMsg struct {
	result domain.PushResult
}

type pushDoneMsg struct {
	run domain.PushRun
	id  string
	err error
}
