package handler

import (
	"testing"
)

func TestQRPayloadExtraction(t *testing.T) {
	cases := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{
			name: "evolution code",
			body: map[string]interface{}{"code": "2@abc,def"},
			want: "2@abc,def",
		},
		{
			name: "wuzapi QRCode",
			body: map[string]interface{}{"QRCode": "data:image/png;base64,AAA"},
			want: "data:image/png;base64,AAA",
		},
		{
			name: "nested qrcode object",
			body: map[string]interface{}{"qrcode": map[string]interface{}{"code": "2@xyz"}},
			want: "2@xyz",
		},
		{
			name: "no qr",
			body: map[string]interface{}{"connected": true},
			want: "",
		},
		{
			name: "empty string ignored",
			body: map[string]interface{}{"code": ""},
			want: "",
		},
	}

	for _, tc := range cases {
		if got := qrPayload(tc.body); got != tc.want {
			t.Errorf("%s: qrPayload = %q, want %q", tc.name, got, tc.want)
		}
	}
}
