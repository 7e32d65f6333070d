// Package auth drives the unattended sign-in attempt. The automaton walks a
// fixed linear sequence of resolver-backed steps and halts at the first step
// that cannot be completed; challenges (CAPTCHA, MFA, inline errors) are
// terminal states that hand control back for manual completion.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// signInPath is the direct sign-in URL used when no sign-in link can be
// clicked on the landing page.
const signInPath = "/ap/signin?openid.pape.max_auth_age=0&openid.return_to=https%3A%2F%2Fwww.amazon.com%2F&openid.identity=http%3A%2F%2Fspecs.openid.net%2Fauth%2F2.0%2Fidentifier_select&openid.assoc_handle=usflex&openid.mode=checkid_setup&openid.claimed_id=http%3A%2F%2Fspecs.openid.net%2Fauth%2F2.0%2Fidentifier_select&openid.ns=http%3A%2F%2Fspecs.openid.net%2Fauth%2F2.0&"

// State is the automaton's position in the sign-in sequence. States are only
// ever reached in declaration order; everything from LoginVerified down is
// terminal.
type State int

const (
	StateInit State = iota
	StateHomeReached
	StateSignInPageReached
	StateEmailEntered
	StateContinueClicked
	StatePasswordEntered
	StateSubmitClicked
	StateChallengeCheck
	StateLoginVerified
	StateCaptchaRequired
	StateMFARequired
	StateErrorDetected
	StateUnclear
)

var stateNames = map[State]string{
	StateInit:              "init",
	StateHomeReached:       "home_reached",
	StateSignInPageReached: "sign_in_page_reached",
	StateEmailEntered:      "email_entered",
	StateContinueClicked:   "continue_clicked",
	StatePasswordEntered:   "password_entered",
	StateSubmitClicked:     "submit_clicked",
	StateChallengeCheck:    "challenge_check",
	StateLoginVerified:     "login_verified",
	StateCaptchaRequired:   "captcha_required",
	StateMFARequired:       "mfa_required",
	StateErrorDetected:     "error_detected",
	StateUnclear:           "unclear",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// NeedsManual reports whether the run ended in a state that requires the
// user to finish signing in by hand. Unclear counts: the conservative bias
// is against false positives.
func (s State) NeedsManual() bool {
	return s != StateLoginVerified
}

// Page is the browser surface the automaton drives.
type Page interface {
	resolver.Queryable
	Navigate(url string) error
	URL() string
	Title() (string, error)
	Content() (string, error)
}

type Options struct {
	BaseURL string
	// Settle is how long to let a page settle after navigations and
	// submissions. Zero is valid (used by tests).
	Settle time.Duration
}

type Automaton struct {
	resolver *resolver.Resolver
	baseURL  string
	settle   time.Duration
	logger   *slog.Logger
	diag     *diag.Recorder
}

func New(opts Options, logger *slog.Logger, rec *diag.Recorder) *Automaton {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.amazon.com"
	}
	return &Automaton{
		resolver: resolver.New(logger, rec),
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		settle:   opts.Settle,
		logger:   logger.With("component", "auth"),
		diag:     rec,
	}
}

// Run performs a single unattended sign-in attempt. It is invoked at most
// once per pipeline execution and never retries a step: the first resolver
// failure halts the run. The returned error is non-nil only for transport
// failures; challenge outcomes are states, not errors.
func (a *Automaton) Run(ctx context.Context, page Page, creds Credentials) (State, error) {
	if !creds.Valid() {
		return StateInit, fmt.Errorf("credentials are incomplete")
	}

	state := StateInit

	if err := page.Navigate(a.baseURL); err != nil {
		return state, fmt.Errorf("failed to reach home page: %w", err)
	}
	if err := a.pause(ctx); err != nil {
		return state, err
	}

	if title, err := page.Title(); err == nil {
		lower := strings.ToLower(title)
		if strings.Contains(lower, "sorry") || strings.Contains(lower, "error") {
			a.logger.Warn("home page looks like an error page", "title", title)
			return StateUnclear, nil
		}
	}
	state = StateHomeReached
	a.logger.Info("state reached", "state", state.String())

	// Click a sign-in link; fall back to navigating straight to the
	// sign-in form when none is clickable.
	if !a.resolver.Click(page, signInLink) {
		a.logger.Info("no sign-in link, navigating directly")
		if err := page.Navigate(a.baseURL + signInPath); err != nil {
			return state, fmt.Errorf("failed to reach sign-in page: %w", err)
		}
	}
	if err := a.pause(ctx); err != nil {
		return state, err
	}

	url := strings.ToLower(page.URL())
	if !strings.Contains(url, "signin") && !strings.Contains(url, "ap/") {
		a.logger.Warn("not on a sign-in page", "url", page.URL())
		return StateUnclear, nil
	}
	state = StateSignInPageReached
	a.logger.Info("state reached", "state", state.String())

	if !a.resolver.Fill(page, emailInput, creds.Email) {
		return StateUnclear, nil
	}
	state = StateEmailEntered

	if !a.resolver.Click(page, continueButton) {
		return StateUnclear, nil
	}
	state = StateContinueClicked
	if err := a.pause(ctx); err != nil {
		return state, err
	}

	if !a.resolver.Fill(page, passwordInput, creds.Password) {
		return StateUnclear, nil
	}
	state = StatePasswordEntered

	if !a.resolver.Click(page, submitButton) {
		return StateUnclear, nil
	}
	state = StateSubmitClicked
	a.logger.Info("state reached", "state", state.String())
	if err := a.pause(ctx); err != nil {
		return state, err
	}

	state = StateChallengeCheck
	if terminal, ok := a.checkChallenges(page); ok {
		return terminal, nil
	}

	return a.verifyLogin(ctx, page)
}

// checkChallenges inspects the post-submit page in fixed priority order:
// CAPTCHA, then MFA, then inline errors. A match means manual completion is
// required; no challenge field is ever interacted with.
func (a *Automaton) checkChallenges(page Page) (State, bool) {
	if a.resolver.Visible(page, captchaChallenge) {
		a.logger.Warn("captcha detected, manual intervention required")
		a.diag.Record(diag.KindChallengeDetected, "auth", captchaChallenge.Field, "captcha challenge present")
		return StateCaptchaRequired, true
	}

	if a.resolver.Visible(page, mfaChallenge) {
		a.logger.Warn("mfa challenge detected, manual intervention required")
		a.diag.Record(diag.KindChallengeDetected, "auth", mfaChallenge.Field, "mfa challenge present")
		return StateMFARequired, true
	}

	if a.resolver.Visible(page, inlineError) {
		message, _ := a.resolver.Text(page, inlineError)
		a.logger.Warn("sign-in error detected", "message", message)
		a.diag.Record(diag.KindChallengeDetected, "auth", inlineError.Field, message)
		return StateErrorDetected, true
	}

	// Page-text heuristics are a secondary diagnostic only; they never
	// decide the outcome.
	a.scanPageHeuristics(page)

	return StateChallengeCheck, false
}

func (a *Automaton) verifyLogin(ctx context.Context, page Page) (State, error) {
	if err := page.Navigate(a.baseURL); err != nil {
		return StateSubmitClicked, fmt.Errorf("failed to re-navigate for verification: %w", err)
	}
	if err := a.pause(ctx); err != nil {
		return StateSubmitClicked, err
	}

	greeting, found := a.resolver.Text(page, accountGreeting)
	// The signed-out header also greets ("Hello, sign in"), so a greeting
	// alone is not proof.
	if found && strings.Contains(strings.ToLower(greeting), "sign in") {
		found = false
	}
	if found && (strings.Contains(greeting, "Hello") || strings.Contains(greeting, "Hi")) {
		a.logger.Info("login verified", "greeting", greeting)
		return StateLoginVerified, nil
	}

	a.logger.Warn("login status unclear after clean submit", "greeting", greeting)
	return StateUnclear, nil
}

var heuristicIndicators = []string{
	"captcha", "blocked", "unusual activity", "verification", "try again",
}

func (a *Automaton) scanPageHeuristics(page Page) {
	content, err := page.Content()
	if err != nil {
		return
	}
	lower := strings.ToLower(content)
	for _, indicator := range heuristicIndicators {
		if strings.Contains(lower, indicator) {
			a.logger.Debug("page text indicator seen", "indicator", indicator)
			a.diag.Record(diag.KindChallengeDetected, "auth", "", "page text contains "+indicator)
		}
	}
}

func (a *Automaton) pause(ctx context.Context) error {
	if a.settle <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.settle):
		return nil
	}
}
