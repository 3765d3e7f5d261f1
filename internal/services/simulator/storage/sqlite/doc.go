// Package sqlite implements simulator storage on SQLite.
//
// Sessions are one row per browser context. Consent lives in a small
// key/value table scoped by browser context under the cookieConsent key, the
// way browser local storage scopes it.
package sqlite
