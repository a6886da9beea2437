// Package ui provides the graphical user interface for WarpPulse.
// This file contains the CSS styles for the window and dialogs.
package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles; colors are shared by the light and dark schemes.
const appCSS = `
/* Status view */
.status-view {
    padding: 24px;
}

.shield-icon {
    -gtk-icon-style: symbolic;
}

.protected .shield-icon,
.protected .status-title {
    color: #3584e4;
}

.unprotected .shield-icon,
.unprotected .status-title {
    color: #e01b24;
}

.status-title {
    font-size: 28px;
    font-weight: 800;
}

.status-text {
    font-size: 14px;
    opacity: 0.8;
}

.mode-pill {
    font-size: 12px;
    font-weight: 600;
    padding: 4px 14px;
    border-radius: 14px;
    background-color: alpha(currentColor, 0.08);
}

.protected .mode-pill {
    color: #3584e4;
    background-color: alpha(#3584e4, 0.15);
}

.error-text {
    color: #e01b24;
    font-size: 12px;
}

/* Toggle button */
.toggle-button {
    min-width: 180px;
    min-height: 44px;
    border-radius: 22px;
    font-weight: 700;
}

.toggle-button.connect {
    background-color: #3584e4;
    color: white;
}

.toggle-button.connect:hover {
    background-color: #1c71d8;
}

.toggle-button.disconnect {
    background-color: #e01b24;
    color: white;
}

.toggle-button.disconnect:hover {
    background-color: #c01c28;
}

.footer {
    font-size: 11px;
    opacity: 0.6;
}

/* Settings panel */
.mode-button {
    min-height: 40px;
    border-radius: 8px;
}

.mode-button.current {
    background-color: #3584e4;
    color: white;
    font-weight: 700;
}

.info-key {
    opacity: 0.7;
}

.info-value {
    font-weight: 600;
}

.raw-output {
    font-family: monospace;
    font-size: 11px;
}

/* Cards shared by the dialogs */
.preferences-card {
    border-radius: 12px;
    border: 1px solid alpha(currentColor, 0.15);
}

.settings-title {
    font-weight: 600;
}

entry {
    border-radius: 6px;
    min-height: 34px;
}

list {
    background-color: transparent;
}

list > row {
    background-color: transparent;
}

button.flat {
    background-color: transparent;
}

button.flat:hover {
    background-color: alpha(currentColor, 0.1);
}
`

// LoadStyles loads the custom CSS styles for the application.
// Should be called during application startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}
