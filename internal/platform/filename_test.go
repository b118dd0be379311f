// SPDX-License-Identifier: EPL-2.0

package platform

import "testing"

func TestIsPortableFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"build_rules.cue", true},
		{"rules.cue", true},
		{".build_rules", true},
		{"console.cue", true},
		{"", false},
		{"CON", false},
		{"con.cue", false},
		{"Lpt1.tar.gz", false},
		{"COM9", false},
		{"COM10", true},
		{"rules.cue.", false},
		{"rules.cue ", false},
		{"rules:cue", false},
		{"rules?.cue", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsPortableFileName(tt.name); got != tt.want {
				t.Errorf("IsPortableFileName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
