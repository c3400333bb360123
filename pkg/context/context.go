package context

import (
	"context"
)

type (
	T = context.Context
	F = context.CancelFunc
)

var (
	Bg       = context.Background
	Cancel   = context.WithCancel
	Timeout  = context.WithTimeout
	TODO     = context.TODO
	Value    = context.WithValue
	Canceled = context.Canceled
)
