package main

import (
	"strings"
	"testing"

	"postmark/internal/api"
)

func TestCollisionTableGroupsShadowedPaths(t *testing.T) {
	out := collisionTable([]api.Collision{{
		Key:      "item",
		Survivor: "ref/item.png",
		Shadowed: []string{"ref/ITEM.jpg", "ref/Item.bmp"},
	}})

	if !strings.Contains(out, "ref/ITEM.jpg") || !strings.Contains(out, "ref/Item.bmp") {
		t.Fatalf("missing shadowed paths:\n%s", out)
	}
	if strings.Count(out, "ref/item.png") != 1 {
		t.Fatalf("survivor should print once per collision group:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Item.bmp") && strings.Contains(line, "item.png") {
			t.Fatalf("survivor repeated on continuation row: %s", line)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]tableColumn{{title: "Key"}, {title: "Records", count: true}},
		[][]string{{"A1"}},
	)
	if !strings.Contains(out, "A1") {
		t.Fatalf("row missing:\n%s", out)
	}
	if !strings.Contains(out, "Records") {
		t.Fatalf("header missing:\n%s", out)
	}
}
