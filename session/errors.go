package session

import "errors"

// ErrClosed is returned by RenderFrame after Close.
var ErrClosed = errors.New("session: closed")
