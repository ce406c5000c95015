package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDataURI_RoundTrip(t *testing.T) {
	m := Media{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	got, err := ParseDataURI(m.DataURI())
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestParseDataURI_Errors(t *testing.T) {
	cases := map[string]string{
		"no scheme":    "image/png;base64,AAAA",
		"no separator": "data:image/png;base64",
		"not base64":   "data:image/png,AAAA",
		"empty mime":   "data:;base64,AAAA",
		"bad payload":  "data:image/png;base64,***",
	}
	for name, uri := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataURI(uri)
			require.Error(t, err)
		})
	}
}

func TestQRCodeURL_EscapesBatchID(t *testing.T) {
	require.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=BATCH+1%2F2",
		QRCodeURL("BATCH 1/2"))
}

func TestBatchStatus_Valid(t *testing.T) {
	require.True(t, BatchVerified.Valid())
	require.False(t, BatchStatus("SHIPPED").Valid())
}
