package auth

import (
	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// Candidate lists for the sign-in flow, tried strictly in order. The
// challenge candidates are only ever checked for presence; the automaton
// never reads or fills a challenge field.
var (
	signInLink = resolver.Candidate{
		Field: "sign-in link",
		Selectors: []string{
			"#nav-link-accountList",
			"a[href*='signin']",
			"#nav-signin-tooltip a",
			".nav-signin-tooltip a",
		},
	}

	emailInput = resolver.Candidate{
		Field: "email input",
		Selectors: []string{
			"#ap_email",
			"input[name='email']",
			"input[type='email']",
			"#ap_email_login",
		},
	}

	continueButton = resolver.Candidate{
		Field: "continue button",
		Selectors: []string{
			"#continue",
			"input[id='continue']",
			"button[type='submit']",
		},
	}

	passwordInput = resolver.Candidate{
		Field: "password input",
		Selectors: []string{
			"#ap_password",
			"input[name='password']",
			"input[type='password']",
		},
	}

	submitButton = resolver.Candidate{
		Field: "sign-in submit",
		Selectors: []string{
			"#signInSubmit",
			"input[id='signInSubmit']",
			"button[type='submit']",
			"#auth-signin-button",
		},
	}

	captchaChallenge = resolver.Candidate{
		Field: "captcha challenge",
		Selectors: []string{
			"#auth-captcha-image",
			"[name='cvf_captcha_input']",
			".cvf-captcha-img",
			"#captchacharacters",
		},
	}

	mfaChallenge = resolver.Candidate{
		Field: "mfa challenge",
		Selectors: []string{
			"#auth-mfa-form",
			"[name='otpCode']",
			"#auth-mfa-otpcode",
			".cvf-challenge-form",
		},
	}

	inlineError = resolver.Candidate{
		Field: "sign-in error",
		Selectors: []string{
			".a-alert-error",
			"#auth-error-message-box",
			".auth-error-message",
		},
	}

	accountGreeting = resolver.Candidate{
		Field: "account greeting",
		Selectors: []string{
			"#nav-link-accountList-nav-line-1",
			"#nav-link-accountList span",
			".nav-line-1",
		},
	}
)
