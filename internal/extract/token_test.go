package extract

import (
	"errors"
	"testing"
)

func TestTokenValidate(t *testing.T) {
	tests := []struct {
		name    string
		token   Token
		wantErr bool
	}{
		{name: "status zero", token: Token{Status: "0", Auth: "st=1~hmac=ab"}},
		{name: "no status attribute", token: Token{Auth: "st=1~hmac=ab"}},
		{name: "non-zero status", token: Token{Status: "1", Auth: "st=1~hmac=ab", Comment: "no access"}, wantErr: true},
		{name: "blocked", token: Token{Auth: "blocked", Comment: "geo"}, wantErr: true},
		{name: "restricted", token: Token{Status: "0", Auth: "restricted"}, wantErr: true},
		{name: "error", token: Token{Auth: "error"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.token.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var tokenErr *TokenError
			if !errors.As(err, &tokenErr) {
				t.Fatalf("error %T is not a *TokenError", err)
			}
			if tokenErr.Comment != tt.token.Comment {
				t.Errorf("comment = %q, want %q", tokenErr.Comment, tt.token.Comment)
			}
			if !IsExpected(err) {
				t.Errorf("token errors should be expected errors")
			}
		})
	}
}

func TestTokenManifestURL(t *testing.T) {
	tests := []struct {
		name    string
		token   Token
		want    string
		wantErr bool
	}{
		{
			name:  "plain url",
			token: Token{URL: "http://h.akamaihd.net/z/a/manifest.f4m", Auth: "st=1~hmac=ab"},
			want:  "http://h.akamaihd.net/z/a/manifest.f4m?hdnea=st=1~hmac=ab",
		},
		{
			name:  "url with query",
			token: Token{URL: "http://h.akamaihd.net/z/a/manifest.f4m?b=1", Auth: "x"},
			want:  "http://h.akamaihd.net/z/a/manifest.f4m?b=1&hdnea=x",
		},
		{
			name:    "empty url",
			token:   Token{Auth: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.token.ManifestURL()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ManifestURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ManifestURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
