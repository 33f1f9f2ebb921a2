// BGGSync - BoardGameGeek Collection Sync and Play Tracking
// Copyright 2026 Martin F. (mfranz87)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfranz87/bggsync

/*
bgg_client.go - Core BoardGameGeek API Client

This file provides the BGGClient struct and HTTP communication layer for
the BGG XML API v2 and the site's session endpoints.

Client Features:
  - Per-endpoint request timeouts (plays 10s, collection 60s, thing 30s)
  - Bearer token authentication on XML API reads
  - Cookie-session login for play logging
  - Client-side rate limiting (BGG throttles aggressive clients)
  - Browser User-Agent (the XML API rejects generic Go clients)
  - Context support for cancellation

Endpoints:
  - GET  /xmlapi2/plays       playback history (FetchPlays, FetchGamePlays)
  - GET  /xmlapi2/collection  collection export, per subtype (FetchCollection)
  - GET  /xmlapi2/thing       game details, batched IDs (FetchThingDetails)
  - POST /login/api/v1        cookie-session login (Login)
  - POST /geekplay.php        play logging (RecordPlay)

BGGClientInterface is implemented by BGGClient for production use, by
CircuitBreakerClient for resilience wrapping, and by mocks in tests.

Related Files:
  - circuit_breaker.go: Circuit breaker wrapper around this client
  - manager.go: Refresh orchestration and snapshot publication
  - refresh.go: The refresh cycle itself
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/mfranz87/bggsync/internal/config"
	"github.com/mfranz87/bggsync/internal/logging"
	"github.com/mfranz87/bggsync/internal/metrics"
	"github.com/mfranz87/bggsync/internal/models/bgg"
)

// Per-endpoint request timeouts. Collection exports are built server-side
// and can take BGG a long time to stream; plays pages are small.
const (
	playsTimeout      = 10 * time.Second
	collectionTimeout = 60 * time.Second
	thingTimeout      = 30 * time.Second
	loginTimeout      = 10 * time.Second
)

// ThingBatchSize is the maximum number of game IDs per thing request.
// BGG truncates or rejects larger ID lists.
const ThingBatchSize = 20

// browserUserAgent is sent on every request. The BGG XML API returns
// empty or error responses to generic client User-Agents.
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// maxErrorBodySize limits the response body read for error reporting
// to avoid unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// PlayPlayer is one participant on a play being recorded. The geekplay
// form only takes a name and a win marker per player.
type PlayPlayer struct {
	Name string `json:"name" validate:"required"`
	Win  bool   `json:"win,omitempty"`
}

// PlayRequest describes a play to record against the BGG account.
type PlayRequest struct {
	GameID   int          `json:"game_id" validate:"required,gt=0"`
	Date     string       `json:"date" validate:"required,datetime=2006-01-02"`
	Comments string       `json:"comments,omitempty"`
	Length   int          `json:"length,omitempty" validate:"gte=0"`
	Players  []PlayPlayer `json:"players,omitempty" validate:"dive"`
}

// BGGClientInterface defines the BGG API operations used by the refresh
// cycle and the play-logging endpoint.
//
// All methods accept a context for cancellation and apply their own
// per-endpoint timeout on top of it. All methods are safe for concurrent
// use; the shared cookie jar serializes session state internally.
type BGGClientInterface interface {
	FetchPlays(ctx context.Context, username string) (*bgg.PlaysPage, error)
	FetchGamePlays(ctx context.Context, username string, gameID int) (*bgg.PlaysPage, error)
	FetchCollection(ctx context.Context, username, subtype string) (*bgg.CollectionPage, error)
	FetchThingDetails(ctx context.Context, ids []int) ([]*bgg.GameRecord, error)
	Login(ctx context.Context) error
	ValidateAuth(ctx context.Context) error
	RecordPlay(ctx context.Context, play *PlayRequest) error
}

// BGGClient handles communication with the BoardGameGeek APIs.
//
// A single client instance owns one cookie jar, so a successful Login
// leaves the session usable by subsequent RecordPlay calls. The client-side
// rate limiter spaces out requests to stay under BGG's throttling.
type BGGClient struct {
	baseURL  string
	username string
	apiToken string
	password string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewBGGClient creates a BGG API client from the account configuration.
// The password is expected to be empty unless play logging is enabled.
func NewBGGClient(cfg *config.BGGConfig, password string) *BGGClient {
	jar, _ := cookiejar.New(nil) // only errors on invalid options, none passed
	return &BGGClient{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		apiToken: cfg.APIToken,
		password: password,
		client: &http.Client{
			Jar: jar,
		},
		// One request every 2 seconds with a small burst. BGG's published
		// guidance is to keep XML API traffic well under 1 req/s.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 2),
	}
}

// get performs a rate-limited GET against an XML API endpoint and returns
// the raw body on HTTP 200. Non-200 statuses become StatusError.
func (c *BGGClient) get(ctx context.Context, endpoint, reqURL string, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordBGGRequest(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordBGGRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		// Drain for connection reuse; the body content is not useful on
		// the statuses BGG actually returns here (202, 401, 5xx).
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, nil
}

// FetchPlays retrieves the first page of logged plays for a user. The page
// carries the account-wide play total and the most recent play.
func (c *BGGClient) FetchPlays(ctx context.Context, username string) (*bgg.PlaysPage, error) {
	params := url.Values{}
	params.Set("username", username)

	body, err := c.get(ctx, "plays", fmt.Sprintf("%s/xmlapi2/plays?%s", c.baseURL, params.Encode()), playsTimeout)
	if err != nil {
		return nil, err
	}

	page, err := bgg.ParsePlays(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plays response: %w", err)
	}
	return &page, nil
}

// FetchGamePlays retrieves the play page for a single game, used to get a
// per-game play count for tracked games that are not in the collection.
func (c *BGGClient) FetchGamePlays(ctx context.Context, username string, gameID int) (*bgg.PlaysPage, error) {
	params := url.Values{}
	params.Set("username", username)
	params.Set("id", strconv.Itoa(gameID))
	params.Set("type", "thing")

	body, err := c.get(ctx, "plays", fmt.Sprintf("%s/xmlapi2/plays?%s", c.baseURL, params.Encode()), playsTimeout)
	if err != nil {
		return nil, err
	}

	page, err := bgg.ParsePlays(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse game plays response: %w", err)
	}
	return &page, nil
}

// FetchCollection retrieves the collection export for one subtype.
//
// BGG builds collection exports asynchronously: the first request queues
// the export and answers 202, or answers 200 with a <message> body while
// the export is still running. Both cases surface as ErrStillProcessing so
// the caller can retry the whole cycle later.
func (c *BGGClient) FetchCollection(ctx context.Context, username, subtype string) (*bgg.CollectionPage, error) {
	params := url.Values{}
	params.Set("username", username)
	params.Set("subtype", subtype)
	params.Set("stats", "1")
	if subtype == bgg.SubtypeBoardgame {
		// Without this, expansions are double-reported under both subtypes.
		params.Set("excludesubtype", bgg.SubtypeExpansion)
	}

	body, err := c.get(ctx, "collection", fmt.Sprintf("%s/xmlapi2/collection?%s", c.baseURL, params.Encode()), collectionTimeout)
	if err != nil {
		if IsStatus(err, http.StatusAccepted) {
			return nil, ErrStillProcessing
		}
		return nil, err
	}

	page, err := bgg.ParseCollection(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse collection response: %w", err)
	}
	if page.StillProcessing {
		return nil, ErrStillProcessing
	}
	return &page, nil
}

// FetchThingDetails retrieves game details for up to ThingBatchSize IDs.
// Callers own the batching; oversized ID lists are an error here rather
// than a silent truncation.
func (c *BGGClient) FetchThingDetails(ctx context.Context, ids []int) ([]*bgg.GameRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > ThingBatchSize {
		return nil, fmt.Errorf("thing request exceeds batch size: %d > %d", len(ids), ThingBatchSize)
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}
	params := url.Values{}
	params.Set("id", strings.Join(idStrs, ","))
	params.Set("stats", "1")

	body, err := c.get(ctx, "thing", fmt.Sprintf("%s/xmlapi2/thing?%s", c.baseURL, params.Encode()), thingTimeout)
	if err != nil {
		return nil, err
	}

	records, err := bgg.ParseThings(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse thing response: %w", err)
	}
	return records, nil
}

// loginCredentials is the JSON body of the session login endpoint.
type loginCredentials struct {
	Credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"credentials"`
}

// Login establishes a cookie session with the BGG site. The session lives
// in the client's cookie jar and is consumed by RecordPlay.
//
// BGG's login endpoint answers 200 or an empty 204 on success depending
// on server version; both are accepted.
func (c *BGGClient) Login(ctx context.Context) error {
	if c.password == "" {
		return fmt.Errorf("login requires a password")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	var creds loginCredentials
	creds.Credentials.Username = c.username
	creds.Credentials.Password = c.password
	payload, err := json.Marshal(&creds)
	if err != nil {
		return fmt.Errorf("failed to encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login/api/v1", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordBGGRequest("login", 0, time.Since(start))
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordBGGRequest("login", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &StatusError{Endpoint: "login", Code: resp.StatusCode}
	}

	logging.Info().Str("username", c.username).Msg("BGG session login succeeded")
	return nil
}

// ValidateAuth probes the XML API with the configured credentials. It is
// used at startup to fail fast on a bad token or username. A queued
// collection export is not an auth failure.
func (c *BGGClient) ValidateAuth(ctx context.Context) error {
	_, err := c.FetchPlays(ctx, c.username)
	if err == nil || IsStatus(err, http.StatusAccepted) {
		return nil
	}
	if IsStatus(err, http.StatusUnauthorized) {
		return fmt.Errorf("BGG rejected the configured credentials: %w", err)
	}
	return err
}

// RecordPlay logs a play against the BGG account. It performs the site's
// two-step flow: a session login, then a form POST to geekplay.php.
//
// BGG's geekplay endpoint answers 200 for rejected plays too, with the
// failure only visible in the response body. A play is treated as saved
// when the status is 200 and the body does not contain "error" in any
// case. This is a blunt check, but it is the only signal the endpoint
// provides.
func (c *BGGClient) RecordPlay(ctx context.Context, play *PlayRequest) error {
	if err := c.Login(ctx); err != nil {
		metrics.RecordPlayLogged(false)
		return fmt.Errorf("login before play logging failed: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("ajax", "1")
	form.Set("action", "save")
	form.Set("objecttype", "thing")
	form.Set("objectid", strconv.Itoa(play.GameID))
	form.Set("playdate", play.Date)
	if play.Comments != "" {
		form.Set("comments", play.Comments)
	}
	if play.Length > 0 {
		form.Set("length", strconv.Itoa(play.Length))
	}
	for i, p := range play.Players {
		form.Set(fmt.Sprintf("playername[%d]", i), p.Name)
		win := "0"
		if p.Win {
			win = "1"
		}
		form.Set(fmt.Sprintf("playerwin[%d]", i), win)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/geekplay.php", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create geekplay request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordBGGRequest("geekplay", 0, time.Since(start))
		metrics.RecordPlayLogged(false)
		return fmt.Errorf("geekplay request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordBGGRequest("geekplay", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		metrics.RecordPlayLogged(false)
		body := readBodyForError(resp.Body)
		return fmt.Errorf("geekplay request failed with status %d: %s", resp.StatusCode, string(body))
	}

	body := readBodyForError(resp.Body)
	if strings.Contains(strings.ToLower(string(body)), "error") {
		metrics.RecordPlayLogged(false)
		return fmt.Errorf("%w: %s", ErrPlayRejected, string(body))
	}

	metrics.RecordPlayLogged(true)
	logging.Info().Int("game_id", play.GameID).Str("date", play.Date).Msg("Play recorded on BGG")
	return nil
}
