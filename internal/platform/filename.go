// SPDX-License-Identifier: EPL-2.0

// Package platform provides cross-platform compatibility utilities.
package platform

import "strings"

// reservedDeviceNames are the DOS device names Windows refuses as file
// names, with or without an extension.
var reservedDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// IsPortableFileName reports whether name can be created on every
// supported platform, including Windows.
func IsPortableFileName(name string) bool {
	if name == "" || strings.ContainsAny(name, `<>:"|?*`) {
		return false
	}
	// Windows silently strips a trailing dot or space.
	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return false
	}
	stem := name
	if i := strings.IndexByte(stem, '.'); i != -1 {
		stem = stem[:i]
	}
	_, reserved := reservedDeviceNames[strings.ToUpper(stem)]
	return !reserved
}
