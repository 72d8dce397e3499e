package ui

import (
	"time"

	"zipexplorer/internal/services"
)

type parseResultMsg struct {
	generation uint64
	result     services.ParseResult
	err        error
	duration   time.Duration
}

type hostEventMsg struct {
	event services.HostEvent
}

type selectionErrMsg struct {
	err error
}

type openPathMsg struct {
	path string
}
