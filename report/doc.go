// Package report renders mission briefings as a single self-contained HTML
// page, one heading per aircraft and one block per mission, with briefing
// images embedded as data URIs.
package report
