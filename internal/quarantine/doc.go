// Package quarantine moves incomplete attempt directories into a separate
// root before a retry is dispatched, so stale partial output can never be
// mistaken for a fresh run and failed-attempt diagnostics are never lost.
package quarantine
