package ui

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// newSection creates a section with icon and title.
func newSection(title string, iconName string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	headerBox.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	headerBox.Append(label)

	section.Append(headerBox)
	return section
}

// newCard creates a styled card container.
func newCard() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	card.AddCSSClass("preferences-card")
	return card
}

// newSettingRow creates a row with title, description, and widget.
func newSettingRow(title string, description string, widget gtk.Widgetter) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(14)
	row.SetMarginBottom(14)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	titleLabel.AddCSSClass("settings-title")
	textBox.Append(titleLabel)

	if description != "" {
		descLabel := gtk.NewLabel(description)
		descLabel.SetXAlign(0)
		descLabel.AddCSSClass("dim-label")
		descLabel.AddCSSClass("caption")
		descLabel.SetWrap(true)
		descLabel.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
		textBox.Append(descLabel)
	}

	row.Append(textBox)
	row.Append(widget)
	return row
}

// newSeparator creates a styled separator for cards.
func newSeparator() *gtk.Separator {
	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	sep.SetMarginStart(16)
	sep.SetMarginEnd(16)
	return sep
}

// newButtonBar creates the Cancel/Save row at the bottom of a dialog.
func newButtonBar(window *gtk.Window, saveLabel string, onSave func()) *gtk.Box {
	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(16)
	buttonBar.SetMarginBottom(20)
	buttonBar.SetMarginStart(24)
	buttonBar.SetMarginEnd(24)
	buttonBar.AddCSSClass("dialog-action-area")

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.AddCSSClass("dialog-button")
	cancelBtn.ConnectClicked(func() {
		window.Close()
	})
	buttonBar.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel(saveLabel)
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.AddCSSClass("dialog-button")
	saveBtn.ConnectClicked(onSave)
	buttonBar.Append(saveBtn)

	return buttonBar
}

// clearList removes every row of a list box.
func clearList(list *gtk.ListBox) {
	for list.FirstChild() != nil {
		list.Remove(list.FirstChild())
	}
}
