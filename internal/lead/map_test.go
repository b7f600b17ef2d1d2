package lead

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestMapDetail_Defaults(t *testing.T) {
	r := MapDetail(DetailRecord{}, testNow)

	if r.State != "Prospect" {
		t.Errorf("State = %q, want Prospect", r.State)
	}
	if r.Client != "2" || r.Supplier != "0" {
		t.Errorf("Client/Supplier = %q/%q, want 2/0", r.Client, r.Supplier)
	}
	if r.CreatedAt != "14/03/2025" {
		t.Errorf("CreatedAt = %q", r.CreatedAt)
	}
	if r.Name != UnknownName {
		t.Errorf("Name = %q, want %q (never %q)", r.Name, UnknownName, NotFound)
	}
	if r.Phone != NotFound || r.Email != NotFound || r.Address != NotFound {
		t.Errorf("contact defaults = %q/%q/%q, want Not Found", r.Phone, r.Email, r.Address)
	}
	if r.Bio != NA {
		t.Errorf("Bio = %q, want N/A", r.Bio)
	}
}

func TestMapDetail_NamePrecedence(t *testing.T) {
	tests := []struct {
		name string
		d    DetailRecord
		want string
	}{
		{"page name wins", DetailRecord{PageName: "Page", AIName: "AI", FullName: "Full"}, "Page"},
		{"ai beats full name", DetailRecord{AIName: "AI", FullName: "Full"}, "AI"},
		{"full name beats search", DetailRecord{FullName: "Full", SearchName: "Search"}, "Full"},
		{"search beats title", DetailRecord{SearchName: "Search", SearchTitle: "Title"}, "Search"},
		{"title is last resort", DetailRecord{SearchTitle: "Title"}, "Title"},
		{"placeholder skipped", DetailRecord{PageName: NotFound, AIName: "AI"}, "AI"},
		{"nothing", DetailRecord{}, UnknownName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapDetail(tt.d, testNow).Name; got != tt.want {
				t.Errorf("Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapDetail_AltName(t *testing.T) {
	r := MapDetail(DetailRecord{Username: "biz.handle", SearchName: "Biz"}, testNow)
	if r.AltName != "biz.handle" {
		t.Errorf("AltName = %q, want username", r.AltName)
	}

	// Search name becomes the alternate only when it did not already
	// become the primary name.
	r = MapDetail(DetailRecord{PageName: "Page", SearchName: "Biz"}, testNow)
	if r.AltName != "Biz" {
		t.Errorf("AltName = %q, want search name", r.AltName)
	}
	r = MapDetail(DetailRecord{SearchName: "Biz"}, testNow)
	if r.AltName != NotFound {
		t.Errorf("AltName = %q, want Not Found when search name is primary", r.AltName)
	}
}

func TestMapDetail_AIFallback(t *testing.T) {
	d := DetailRecord{
		Phone:     NotFound,
		AIPhone:   "0612345678",
		Email:     "dom@example.com",
		AIEmail:   "ai@example.com",
		AIAddress: "12 Rue Example",
	}
	r := MapDetail(d, testNow)
	if r.Phone != "0612345678" {
		t.Errorf("Phone = %q, want AI fallback", r.Phone)
	}
	if r.Email != "dom@example.com" {
		t.Errorf("Email = %q, DOM value must win", r.Email)
	}
	if r.Address != "12 Rue Example" {
		t.Errorf("Address = %q", r.Address)
	}
}

func TestMapDetail_PlatformSelfLink(t *testing.T) {
	d := DetailRecord{
		SourceURL: "https://www.facebook.com/SomeBiz",
		Instagram: "https://www.instagram.com/somebiz/",
	}
	r := MapDetail(d, testNow)
	if r.Facebook != d.SourceURL {
		t.Errorf("Facebook = %q, want source URL self-link", r.Facebook)
	}
	if r.Instagram != d.Instagram {
		t.Errorf("Instagram = %q", r.Instagram)
	}

	d = DetailRecord{SourceURL: "https://www.instagram.com/somebiz/"}
	r = MapDetail(d, testNow)
	if r.Instagram != d.SourceURL {
		t.Errorf("Instagram = %q, want source URL self-link", r.Instagram)
	}
	if r.Facebook != NotFound {
		t.Errorf("Facebook = %q, want Not Found", r.Facebook)
	}
}

func TestMapDetail_WhatsAppPrecedence(t *testing.T) {
	tests := []struct {
		name string
		d    DetailRecord
		want string
	}{
		{
			"to-verify wins",
			DetailRecord{WhatsAppToVerify: "https://wa.me/212612345678", WhatsApp: "https://wa.me/111", AIWhatsApp: "https://wa.me/222"},
			"https://wa.me/212612345678",
		},
		{
			"invalid to-verify falls through",
			DetailRecord{WhatsAppToVerify: InvalidPhoneFormat, WhatsApp: "https://wa.me/111"},
			"https://wa.me/111",
		},
		{
			"platform placeholder falls through to ai",
			DetailRecord{WhatsAppToVerify: NotGenerated, WhatsApp: WhatsAppNAInstagram, AIWhatsApp: "https://wa.me/222"},
			"https://wa.me/222",
		},
		{
			"nothing",
			DetailRecord{},
			NotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapDetail(tt.d, testNow).WhatsApp; got != tt.want {
				t.Errorf("WhatsApp = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeaderRecordAligned(t *testing.T) {
	if len(Header()) != len(Row{}.Record()) {
		t.Fatalf("header has %d columns, record has %d", len(Header()), len(Row{}.Record()))
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	r := MapDetail(DetailRecord{
		PageName:  "Biz",
		SourceURL: "https://www.facebook.com/Biz",
		Status:    StatusSuccess,
	}, testNow)

	got := FromFields(r.Fields())
	if got != r {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, r)
	}
}

func TestIsFailure(t *testing.T) {
	for _, s := range []Status{StatusSkippedPostURL, StatusRedirected, StatusScraperError, StatusTimeout, StatusCriticalMissing} {
		if !IsFailure(s) {
			t.Errorf("IsFailure(%q) = false, want true", s)
		}
	}
	for _, s := range []Status{StatusSuccess, StatusPartialNoIntro, Status("Partial Success; Errors on some entries")} {
		if IsFailure(s) {
			t.Errorf("IsFailure(%q) = true, want false", s)
		}
	}
}

func TestIsLead(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want bool
	}{
		{"email only", Row{Email: "a@b.com"}, true},
		{"whatsapp only", Row{WhatsApp: "https://wa.me/212612345678"}, true},
		{"facebook only", Row{Facebook: "https://www.facebook.com/Biz"}, true},
		{"name plus address", Row{Name: "Biz", Address: "12 Rue Example"}, true},
		{"name plus website", Row{Name: "Biz", Website: "https://biz.example"}, true},
		{"name alone", Row{Name: "Biz"}, false},
		{"unknown name plus address", Row{Name: UnknownName, Address: "12 Rue Example"}, false},
		{"placeholders everywhere", Row{Name: NotFound, Email: NA, WhatsApp: NotGenerated}, false},
		{"empty", Row{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLead(tt.row); got != tt.want {
				t.Errorf("IsLead = %v, want %v", got, tt.want)
			}
		})
	}
}
