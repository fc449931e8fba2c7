package models

import "errors"

var ErrPasswordsDiffer = errors.New("passwords do not match")
