package services

import (
	"strings"
	"testing"
)

func TestRenderMail(t *testing.T) {
	body := renderMail(mailContent{
		Subject:    "Hello <team>",
		Paragraphs: []string{"First", "  ", "<script>alert(1)</script>"},
		Meta: []mailMetaItem{
			{Label: "Email", Value: "a@innopolis.university"},
			{Label: "Empty", Value: " "},
		},
	})

	if !strings.Contains(body, "Hello &lt;team&gt;") {
		t.Fatal("subject not escaped")
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("paragraph not escaped")
	}
	if strings.Count(body, "<p ") != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", strings.Count(body, "<p "))
	}
	if !strings.Contains(body, "a@innopolis.university") || strings.Contains(body, ">Empty<") {
		t.Fatal("meta rows not filtered")
	}
}
