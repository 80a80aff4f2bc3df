// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImages(t *testing.T) {
	md := "# Title\n\n![](0_0.png)\n\nSome text ![chart](./0_1.png \"Chart\") inline.\n\n" +
		"```\n![](not-an-image.png)\n```\n"
	assert.Equal(t, []string{"0_0.png", "./0_1.png"}, Images(md))
}

func TestAudit(t *testing.T) {
	tests := []struct {
		name  string
		md    string
		crops []string
		want  Report
	}{
		{
			name:  "all referenced",
			md:    "![](0_0.png)\n\n![](0_1.png)",
			crops: []string{"0_0.png", "0_1.png"},
			want:  Report{Referenced: []string{"0_0.png", "0_1.png"}, Unreferenced: []string{}, Unknown: []string{}},
		},
		{
			name:  "missing crop",
			md:    "text only\n\n![](1_0.png)",
			crops: []string{"0_0.png", "1_0.png"},
			want:  Report{Referenced: []string{"1_0.png"}, Unreferenced: []string{"0_0.png"}, Unknown: []string{}},
		},
		{
			name:  "unknown and remote references",
			md:    "![](9_9.png) ![](https://example.com/x.png) ![](out/0_0.png) ![]()",
			crops: []string{"0_0.png"},
			want:  Report{Referenced: []string{"0_0.png"}, Unreferenced: []string{}, Unknown: []string{"9_9.png"}},
		},
		{
			name:  "no crops",
			md:    "plain",
			crops: nil,
			want:  Report{Referenced: []string{}, Unreferenced: []string{}, Unknown: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Audit(tt.md, tt.crops))
		})
	}
}
