package window

import "strings"

// Kind is the window type as announced through _NET_WM_WINDOW_TYPE.
type Kind int

const (
	KindNormal Kind = iota
	KindDesktop
	KindDock
	KindToolbar
	KindMenu
	KindDialog
	KindUtility
	KindSplash
	KindDropdownMenu
	KindPopupMenu
	KindTooltip
	KindNotification
	KindCriticalNotification
	KindComboBox
	KindDNDIcon
	KindOnScreenDisplay
	KindOverride
)

var kindNames = map[Kind]string{
	KindNormal:               "normal",
	KindDesktop:              "desktop",
	KindDock:                 "dock",
	KindToolbar:              "toolbar",
	KindMenu:                 "menu",
	KindDialog:               "dialog",
	KindUtility:              "utility",
	KindSplash:               "splash",
	KindDropdownMenu:         "dropdown-menu",
	KindPopupMenu:            "popup-menu",
	KindTooltip:              "tooltip",
	KindNotification:         "notification",
	KindCriticalNotification: "critical-notification",
	KindComboBox:             "combo-box",
	KindDNDIcon:              "dnd-icon",
	KindOnScreenDisplay:      "on-screen-display",
	KindOverride:             "override",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind accepts either a short name ("dialog") or an EWMH atom name
// ("_NET_WM_WINDOW_TYPE_DIALOG").
func ParseKind(s string) (Kind, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "_net_wm_window_type_")
	name = strings.TrimPrefix(name, "_kde_net_wm_window_type_")
	name = strings.ReplaceAll(name, "_", "-")
	switch name {
	case "dropdown-menu", "dropdownmenu":
		return KindDropdownMenu, true
	case "popup-menu", "popupmenu":
		return KindPopupMenu, true
	case "combo", "combobox", "combo-box":
		return KindComboBox, true
	case "dnd", "dnd-icon":
		return KindDNDIcon, true
	case "on-screen-display", "osd":
		return KindOnScreenDisplay, true
	case "critical-notification":
		return KindCriticalNotification, true
	}
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindNormal, false
}

// KindFromTypes picks the first recognized type from a _NET_WM_WINDOW_TYPE
// list. Windows without a usable type are normal windows, or dialogs when
// they are transient.
func KindFromTypes(types []string, transient bool) Kind {
	for _, t := range types {
		if k, ok := ParseKind(t); ok {
			return k
		}
	}
	if transient {
		return KindDialog
	}
	return KindNormal
}

// IsSpecial reports the kinds the window manager never treats like a
// regular application window.
func (k Kind) IsSpecial() bool {
	switch k {
	case KindDesktop, KindDock, KindSplash, KindToolbar, KindNotification, KindOnScreenDisplay, KindCriticalNotification:
		return true
	}
	return false
}
