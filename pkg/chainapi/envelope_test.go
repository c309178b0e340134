package chainapi

import (
	"testing"

	"github.com/Gerri254/chainctl/pkg/models"
)

func TestDecodePage_ProcurementShape(t *testing.T) {
	raw := []byte(`{
		"results": [{"_id":"p1","title":"Road works"},{"_id":"p2","title":"Supplies"}],
		"total": 42, "page": 2, "limit": 2, "pages": 21,
		"has_next": true, "has_prev": true
	}`)

	page, err := decodePage[models.Procurement](raw)
	if err != nil {
		t.Fatalf("decodePage failed: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "p1" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if page.Total != 42 || page.Page != 2 || page.PerPage != 2 || page.Pages != 21 {
		t.Fatalf("unexpected pagination: %+v", page)
	}
	if !page.HasNext() || !page.HasPrev() {
		t.Fatal("middle page must have next and prev")
	}
}

func TestDecodePage_JobsShape(t *testing.T) {
	raw := []byte(`{
		"jobs": [{"_id":"j1","title":"Backend Engineer","status":"active"}],
		"total": 31, "page": 1, "per_page": 20, "total_pages": 2
	}`)

	page, err := decodePage[models.JobPosting](raw)
	if err != nil {
		t.Fatalf("decodePage failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "Backend Engineer" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if page.Total != 31 || page.PerPage != 20 || page.Pages != 2 {
		t.Fatalf("unexpected pagination: %+v", page)
	}
	if page.HasPrev() {
		t.Fatal("page 1 must disable Previous")
	}
	if !page.HasNext() {
		t.Fatal("page 1 of 2 must enable Next")
	}
}

func TestDecodePage_PagesComputedWhenAbsent(t *testing.T) {
	raw := []byte(`{"items": [], "total": 45, "page": 3, "per_page": 20}`)

	page, err := decodePage[models.JobPosting](raw)
	if err != nil {
		t.Fatalf("decodePage failed: %v", err)
	}
	if page.Pages != 3 {
		t.Fatalf("pages = %d, want ceil(45/20) = 3", page.Pages)
	}
	if page.HasNext() {
		t.Fatal("last page must disable Next")
	}
}

func TestDecodePage_BareArray(t *testing.T) {
	raw := []byte(`[{"_id":"a1","severity":"high"},{"_id":"a2","severity":"low"}]`)

	page, err := decodePage[models.Anomaly](raw)
	if err != nil {
		t.Fatalf("decodePage failed: %v", err)
	}
	if len(page.Items) != 2 || page.Total != 2 || page.Pages != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.HasNext() || page.HasPrev() {
		t.Fatal("single page must disable both controls")
	}
}

func TestDecodePage_BeyondLastPage(t *testing.T) {
	// requesting page 99 of 3: server answers an empty list, Next stays off
	raw := []byte(`{"results": [], "total": 45, "page": 99, "limit": 20, "pages": 3}`)

	page, err := decodePage[models.Procurement](raw)
	if err != nil {
		t.Fatalf("decodePage failed: %v", err)
	}
	if page.HasNext() {
		t.Fatal("page beyond the end must disable Next")
	}
	if !page.HasPrev() {
		t.Fatal("page beyond the end still has previous pages")
	}
}

func TestDecodePage_NoListField(t *testing.T) {
	if _, err := decodePage[models.JobPosting]([]byte(`{"total": 3}`)); err == nil {
		t.Fatal("expected error when no list field is present")
	}
}

func TestDecodeEnvelope_ErrorFields(t *testing.T) {
	env, err := decodeEnvelope([]byte(`{"success":false,"error":"Validation failed","errors":{"missing_fields":["email"]}}`))
	if err != nil {
		t.Fatalf("decodeEnvelope failed: %v", err)
	}
	apiErr := newAPIError(422, env)
	if apiErr.Message != "Validation failed" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if _, ok := apiErr.Fields["missing_fields"]; !ok {
		t.Error("expected field errors to carry through")
	}
}

func TestDecodeEnvelope_Empty(t *testing.T) {
	if _, err := decodeEnvelope(nil); err == nil {
		t.Fatal("expected error for empty body")
	}
}
