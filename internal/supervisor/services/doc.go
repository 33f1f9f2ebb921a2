// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

// Package services adapts application components to the suture v4
// Serve(ctx) pattern. The sync manager already implements
// suture.Service directly; the HTTP server needs the wrapper here to
// translate ListenAndServe/Shutdown into a context-aware lifecycle.
package services
