// Package ui provides the graphical user interface for WarpPulse.
// This file contains the split tunneling dialog, which edits the routes
// excluded from the WARP tunnel.
package ui

import (
	"context"
	"strings"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/warppulse/warppulse/cli"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/warp"
)

// SplitTunnelDialog lists, adds and removes tunnel exclusions. Every change
// is applied through warp-cli immediately.
type SplitTunnelDialog struct {
	window     *gtk.Window
	mainWindow *MainWindow
	client     *warp.Client
	routesList *gtk.ListBox
	routeEntry *gtk.Entry
	errorLabel *gtk.Label
	spinner    *gtk.Spinner
	routes     []string
}

// NewSplitTunnelDialog creates a new split tunneling dialog.
func NewSplitTunnelDialog(mainWindow *MainWindow) *SplitTunnelDialog {
	std := &SplitTunnelDialog{
		mainWindow: mainWindow,
		client:     mainWindow.app.client,
	}
	std.build()
	std.reload()
	return std
}

// build constructs the dialog UI.
func (std *SplitTunnelDialog) build() {
	std.window = gtk.NewWindow()
	std.window.SetTitle("Split Tunneling")
	std.window.SetTransientFor(&std.mainWindow.window.Window)
	std.window.SetModal(true)
	std.window.SetDefaultSize(440, 520)
	std.window.SetResizable(false)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	contentBox := gtk.NewBox(gtk.OrientationVertical, 20)
	contentBox.SetMarginTop(common.DialogMargin)
	contentBox.SetMarginBottom(16)
	contentBox.SetMarginStart(common.DialogMargin)
	contentBox.SetMarginEnd(common.DialogMargin)

	routesSection := newSection("Excluded IPs and Networks", "network-server-symbolic")
	routesCard := newCard()
	routesInner := gtk.NewBox(gtk.OrientationVertical, 12)
	routesInner.SetMarginTop(14)
	routesInner.SetMarginBottom(14)
	routesInner.SetMarginStart(16)
	routesInner.SetMarginEnd(16)

	helpLabel := gtk.NewLabel("Traffic to these addresses bypasses WARP. Enter an IP address (e.g., 192.168.1.100) or a CIDR network (e.g., 10.0.0.0/8).")
	helpLabel.SetXAlign(0)
	helpLabel.AddCSSClass("dim-label")
	helpLabel.AddCSSClass("caption")
	helpLabel.SetWrap(true)
	routesInner.Append(helpLabel)

	addRouteBox := gtk.NewBox(gtk.OrientationHorizontal, 8)
	std.routeEntry = gtk.NewEntry()
	std.routeEntry.SetPlaceholderText("192.168.1.0/24 or 10.0.0.1")
	std.routeEntry.SetHExpand(true)
	std.routeEntry.ConnectActivate(std.onAdd)
	addRouteBox.Append(std.routeEntry)

	addBtn := gtk.NewButtonWithLabel("Add")
	addBtn.AddCSSClass("suggested-action")
	addBtn.ConnectClicked(std.onAdd)
	addRouteBox.Append(addBtn)

	std.spinner = gtk.NewSpinner()
	addRouteBox.Append(std.spinner)
	routesInner.Append(addRouteBox)

	std.errorLabel = gtk.NewLabel("")
	std.errorLabel.SetXAlign(0)
	std.errorLabel.SetWrap(true)
	std.errorLabel.AddCSSClass("error-text")
	std.errorLabel.SetVisible(false)
	routesInner.Append(std.errorLabel)

	routesFrame := gtk.NewFrame("")
	std.routesList = gtk.NewListBox()
	std.routesList.AddCSSClass("boxed-list")
	std.routesList.SetSelectionMode(gtk.SelectionNone)
	routesFrame.SetChild(std.routesList)
	routesInner.Append(routesFrame)

	quickAddLabel := gtk.NewLabel("Quick Add")
	quickAddLabel.SetXAlign(0)
	quickAddLabel.SetMarginTop(8)
	quickAddLabel.AddCSSClass("dim-label")
	quickAddLabel.AddCSSClass("caption")
	routesInner.Append(quickAddLabel)

	quickAddBox := gtk.NewBox(gtk.OrientationHorizontal, 8)
	quickAddBox.SetHomogeneous(true)

	privateBtn := gtk.NewButtonWithLabel("Private Networks")
	privateBtn.AddCSSClass("flat")
	privateBtn.SetTooltipText("10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16")
	privateBtn.ConnectClicked(func() {
		std.add("10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16")
	})
	quickAddBox.Append(privateBtn)

	localBtn := gtk.NewButtonWithLabel("Local Network")
	localBtn.AddCSSClass("flat")
	localBtn.SetTooltipText("192.168.0.0/16")
	localBtn.ConnectClicked(func() {
		std.add("192.168.0.0/16")
	})
	quickAddBox.Append(localBtn)

	routesInner.Append(quickAddBox)
	routesCard.Append(routesInner)
	routesSection.Append(routesCard)
	contentBox.Append(routesSection)

	scrolled.SetChild(contentBox)
	rootBox.Append(scrolled)

	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(16)
	buttonBar.SetMarginBottom(20)
	buttonBar.SetMarginStart(common.DialogMargin)
	buttonBar.SetMarginEnd(common.DialogMargin)
	buttonBar.AddCSSClass("dialog-action-area")

	closeBtn := gtk.NewButtonWithLabel("Close")
	closeBtn.AddCSSClass("dialog-button")
	closeBtn.ConnectClicked(func() {
		std.window.Close()
	})
	buttonBar.Append(closeBtn)
	rootBox.Append(buttonBar)

	std.window.SetChild(rootBox)
}

func (std *SplitTunnelDialog) onAdd() {
	route := strings.TrimSpace(std.routeEntry.Text())
	if route == "" {
		return
	}
	if warp.NormalizeRoute(route) == "" {
		std.setError("Not an IP address or network: " + route)
		return
	}
	std.routeEntry.SetText("")
	std.add(route)
}

// add excludes routes one after another, then reloads the list.
func (std *SplitTunnelDialog) add(routes ...string) {
	existing := append([]string(nil), std.routes...)
	std.run(func(ctx context.Context) error {
		for _, route := range routes {
			if containsRoute(existing, warp.NormalizeRoute(route)) {
				continue
			}
			if _, err := std.client.AddTunnelIP(ctx, route); err != nil {
				return err
			}
		}
		return nil
	})
}

func (std *SplitTunnelDialog) remove(route string) {
	std.run(func(ctx context.Context) error {
		_, err := std.client.RemoveTunnelIP(ctx, route)
		return err
	})
}

func (std *SplitTunnelDialog) reload() {
	std.run(func(context.Context) error { return nil })
}

// run performs fn off the GTK thread, then reads the current exclusions
// back from warp-cli and redraws the list.
func (std *SplitTunnelDialog) run(fn func(ctx context.Context) error) {
	std.spinner.Start()
	std.setError("")

	go func() {
		ctx := context.Background()
		err := fn(ctx)

		out, listErr := std.client.TunnelIPs(ctx)
		if err == nil {
			err = listErr
		}

		glib.IdleAdd(func() {
			std.spinner.Stop()
			if listErr == nil {
				std.routes = warp.ParseTunnelIPs(out)
				std.refreshRoutesList()
			}
			if err != nil {
				common.LogWarn("Split tunnel: %v", err)
				std.setError(cli.Describe(err))
			}
		})
	}()
}

func (std *SplitTunnelDialog) setError(msg string) {
	std.errorLabel.SetText(msg)
	std.errorLabel.SetVisible(msg != "")
}

func containsRoute(routes []string, route string) bool {
	for _, r := range routes {
		if r == route {
			return true
		}
	}
	return false
}

// refreshRoutesList updates the routes list UI.
func (std *SplitTunnelDialog) refreshRoutesList() {
	clearList(std.routesList)

	if len(std.routes) == 0 {
		emptyLabel := gtk.NewLabel("No routes excluded")
		emptyLabel.AddCSSClass("dim-label")
		emptyLabel.SetMarginTop(24)
		emptyLabel.SetMarginBottom(24)
		row := gtk.NewListBoxRow()
		row.SetChild(emptyLabel)
		row.SetSelectable(false)
		std.routesList.Append(row)
		return
	}

	for _, route := range std.routes {
		std.routesList.Append(std.createRouteRow(route))
	}
}

// createRouteRow creates a row widget for a route.
func (std *SplitTunnelDialog) createRouteRow(route string) *gtk.ListBoxRow {
	row := gtk.NewListBoxRow()
	row.SetSelectable(false)

	box := gtk.NewBox(gtk.OrientationHorizontal, 12)
	box.SetMarginTop(8)
	box.SetMarginBottom(8)
	box.SetMarginStart(12)
	box.SetMarginEnd(12)

	icon := gtk.NewImage()
	if strings.HasSuffix(route, "/32") || strings.HasSuffix(route, "/128") {
		icon.SetFromIconName("computer-symbolic")
		icon.SetTooltipText("Host")
	} else {
		icon.SetFromIconName("network-workgroup-symbolic")
		icon.SetTooltipText("Network")
	}
	box.Append(icon)

	label := gtk.NewLabel(route)
	label.SetHExpand(true)
	label.SetXAlign(0)
	box.Append(label)

	deleteBtn := gtk.NewButton()
	deleteBtn.SetIconName("edit-delete-symbolic")
	deleteBtn.AddCSSClass("flat")
	deleteBtn.AddCSSClass("circular")
	deleteBtn.SetTooltipText("Remove")
	deleteBtn.ConnectClicked(func() {
		std.remove(route)
	})
	box.Append(deleteBtn)

	row.SetChild(box)
	return row
}

// Show displays the dialog.
func (std *SplitTunnelDialog) Show() {
	std.window.Show()
}
