// Package guard decides, before every navigation, whether the transition is
// allowed or must be redirected. Anonymous users heading anywhere outside
// the auth section are sent to the login page with enough context (intended
// path, reason, section type) to explain the detour and return them after
// signing in; authenticated users are kept out of the auth section.
package guard

import (
	"context"
	"net/url"
	"strings"
)

const (
	loginPath   = "/auth/login"
	landingPath = "/"
	authPrefix  = "/auth"
)

// Session is the slice of the session manager the guard consults.
type Session interface {
	CheckAuth(ctx context.Context)
	IsLoggedIn() bool
}

// Decision is the guard's verdict. When Allowed is false, Redirect holds the
// destination path including redirect/message/type query parameters.
type Decision struct {
	Allowed  bool
	Redirect string
}

type section struct {
	prefix  string
	typ     string
	message string
}

// Known sections, matched by path prefix. Anything else falls through to the
// default message.
var sections = []section{
	{"/profile", "profile", "please sign in to view your profile"},
	{"/records", "records", "please sign in to view your records"},
	{"/settings", "settings", "please sign in to change your settings"},
}

const (
	defaultType    = "default"
	defaultMessage = "please sign in to continue"
)

type Guard struct {
	session Session
}

func New(session Session) *Guard {
	return &Guard{session: session}
}

// Check reconciles auth state and returns the decision for target. It runs
// synchronously: navigation must not proceed before it returns.
func (g *Guard) Check(ctx context.Context, target string) Decision {
	g.session.CheckAuth(ctx)

	loggedIn := g.session.IsLoggedIn()
	inAuthSection := strings.HasPrefix(target, authPrefix)

	if !loggedIn && !inAuthSection {
		typ, message := classify(target)
		q := url.Values{}
		q.Set("redirect", target)
		q.Set("message", message)
		q.Set("type", typ)
		return Decision{Redirect: loginPath + "?" + q.Encode()}
	}

	if loggedIn && inAuthSection {
		return Decision{Redirect: landingPath}
	}

	return Decision{Allowed: true}
}

func classify(target string) (typ, message string) {
	for _, s := range sections {
		if strings.HasPrefix(target, s.prefix) {
			return s.typ, s.message
		}
	}
	return defaultType, defaultMessage
}
