package service

import "testing"

func TestParseThreadRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ThreadRef
		wantErr bool
	}{
		{"client prefixed", "client-123", ThreadRef{Source: SourceClient, ID: 123}, false},
		{"breeder prefixed", "breeder-456", ThreadRef{Source: SourceBreeder, ID: 456}, false},
		{"unprefixed defaults to client", "77", ThreadRef{Source: SourceClient, ID: 77}, false},
		{"unknown source", "vendor-12", ThreadRef{}, true},
		{"missing id", "client-", ThreadRef{}, true},
		{"zero id", "client-0", ThreadRef{}, true},
		{"garbage", "client-abc", ThreadRef{}, true},
		{"empty", "", ThreadRef{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThreadRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("got=%+v want=%+v", got, tt.want)
			}
		})
	}
}

func TestThreadRefString(t *testing.T) {
	ref := ThreadRef{Source: SourceBreeder, ID: 9}
	if ref.String() != "breeder-9" {
		t.Fatalf("got %q", ref.String())
	}
}
