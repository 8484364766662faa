package api_test

import (
	"testing"

	"postmark/internal/api"
	"postmark/internal/dataset"
	"postmark/internal/review"
	"postmark/internal/testsupport"
)

func TestNewRecordViewResolvesTextFields(t *testing.T) {
	root := testsupport.NewDatasetRoot(t)
	postcodePath := testsupport.WriteFile(t, root, "123456\nsecond\n", dataset.FolderReadPostcode, "A1_postcode.txt")
	wordsPath := testsupport.WriteFile(t, root, "سلام\nدنیا\n", dataset.FolderReadWords, "A1_words.txt")

	view := review.View{
		Record: dataset.Record{
			Key:          "A1",
			PostcodeText: postcodePath,
			WordsText:    wordsPath,
			// RegionText absent.
		},
		Position: 3,
		Total:    10,
	}

	got := api.NewRecordView(view)
	if got.Header != "A1  (3/10)" {
		t.Fatalf("Header = %q", got.Header)
	}
	if got.Postcode != "123456" {
		t.Fatalf("Postcode = %q", got.Postcode)
	}
	if got.Words != "سلام\nدنیا" {
		t.Fatalf("Words = %q", got.Words)
	}
	if got.Region != "_" {
		t.Fatalf("Region = %q, want sentinel", got.Region)
	}
	if got.Annotated {
		t.Fatal("unexpected annotation flag")
	}
}

func TestNewRecordViewCarriesAnnotation(t *testing.T) {
	view := review.View{
		Record:   dataset.Record{Key: "B2"},
		Position: 1,
		Total:    1,
		Annotation: &review.Annotation{
			Key:         "B2",
			Label:       review.LabelWrong,
			Explanation: "wrong region",
		},
	}
	got := api.NewRecordView(view)
	if !got.Annotated || got.Label != "wrong" || got.Explanation != "wrong region" {
		t.Fatalf("annotation not carried: %+v", got)
	}
}

func TestNewCollisions(t *testing.T) {
	got := api.NewCollisions([]dataset.Collision{
		{Key: "item", Survivor: "/x/item.png", Shadowed: []string{"/x/ITEM.jpg"}},
	})
	if len(got) != 1 || got[0].Key != "item" || len(got[0].Shadowed) != 1 {
		t.Fatalf("unexpected conversion: %+v", got)
	}
}
