package mlconfig

import "github.com/pkg/errors"

var ErrConfigNotFound = errors.New("config file was not found")
var ErrUnknownReference = errors.New("unknown reference")
