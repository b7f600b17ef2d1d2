package normalize

import "testing"

func TestCleanURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"instagram profile", "https://www.instagram.com/somebiz/?hl=en", "https://www.instagram.com/somebiz/"},
		{"instagram deep path", "https://instagram.com/somebiz/reels/123", "https://www.instagram.com/somebiz/"},
		{"instagram no handle", "https://www.instagram.com/", "https://www.instagram.com/"},
		{"facebook vanity", "https://www.facebook.com/SomeBiz", "https://www.facebook.com/SomeBiz"},
		{"facebook trailing slash kept", "https://facebook.com/SomeBiz/", "https://www.facebook.com/SomeBiz/"},
		{"facebook profile id", "https://www.facebook.com/profile.php?id=100012345&ref=xav", "https://www.facebook.com/profile.php?id=100012345"},
		{"facebook query dropped", "https://m.facebook.com/SomeBiz?ref=page_internal", "https://www.facebook.com/SomeBiz"},
		{"wa.me trims extras", "https://wa.me/212612345678?text=hi", "https://wa.me/212612345678"},
		{"generic adds trailing slash", "https://example.com/contact", "https://example.com/contact/"},
		{"generic file path untouched", "https://example.com/about.html", "https://example.com/about.html"},
		{"generic strips query", "http://example.com/shop/?utm=1#top", "http://example.com/shop/"},
		{"bare host", "https://example.com", "https://example.com/"},
		{"schemeless", "example.com/contact", "https://example.com/contact/"},
		{"empty", "", NotFound},
		{"placeholder", "N/A", NotFound},
		{"fragment only", "#", NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanURL(tt.in); got != tt.want {
				t.Errorf("CleanURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanURLIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.instagram.com/somebiz/?hl=en",
		"https://facebook.com/SomeBiz",
		"https://www.facebook.com/profile.php?id=42",
		"https://wa.me/212612345678",
		"https://example.com/contact",
		"https://example.com/about.html",
	}
	for _, in := range inputs {
		once := CleanURL(in)
		if twice := CleanURL(once); twice != once {
			t.Errorf("CleanURL not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestCleanCount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,234", "1234"},
		{"12k", "12000"},
		{"1.2K", "1200"},
		{"987", "987"},
		{"12 345", "12345"},
		{"many", "many"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCount(tt.in); got != tt.want {
			t.Errorf("CleanCount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
