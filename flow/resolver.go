package flow

import (
	"strings"

	"github.com/gloriapark/concierge/access"
	"github.com/gloriapark/concierge/intercom"
)

// FilterVisible returns the devices the user may operate, in fetch order.
// A device without a section is visible to everyone; a sectioned device is
// visible only on an exact, case-sensitive section match. The fetched-list
// index is preserved on each device.
func FilterVisible(devices []intercom.Device, user access.User) []intercom.Device {
	visible := make([]intercom.Device, 0, len(devices))
	for _, d := range devices {
		if d.Section != "" && d.Section != user.Section {
			continue
		}
		visible = append(visible, d)
	}
	return visible
}

// ResolveCommand matches free text against the device list by substring
// containment: the first device (in list order) whose description appears
// anywhere in the text wins. Overlapping descriptions therefore resolve to
// the earlier list entry regardless of intent; that precedence is part of
// the contract.
func ResolveCommand(text string, devices []intercom.Device) (intercom.Device, bool) {
	for _, d := range devices {
		if d.Description == "" {
			continue
		}
		if strings.Contains(text, d.Description) {
			return d, true
		}
	}
	return intercom.Device{}, false
}

// MenuKeyboard builds one keyboard row per visible device, with an open
// button and a snapshot button whose labels double as the command texts.
func MenuKeyboard(devices []intercom.Device) [][]string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{
			openButtonPrefix + d.Description,
			snapshotButtonPrefix + d.Description,
		})
	}
	return rows
}
