// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

package sync

import (
	"errors"
	"fmt"
)

// ErrStillProcessing is returned by collection fetches while BGG is still
// building the collection export server-side. BGG signals this either with
// HTTP 202 or with a 200 whose body is a <message> wrapper.
var ErrStillProcessing = errors.New("collection export still processing")

// ErrPlayRejected is returned when BGG accepted the geekplay request at the
// HTTP level but the response body indicates the play was not saved.
var ErrPlayRejected = errors.New("play rejected by BGG")

// StatusError reports an unexpected HTTP status from a BGG endpoint. The
// code is preserved so callers can distinguish auth failures (401) and
// queued exports (202) from plain server errors.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed with status %d", e.Endpoint, e.Code)
}

// IsStatus reports whether err is a StatusError with the given HTTP code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
