package rpc

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	if c == nil {
		t.Fatal("json codec not registered")
	}

	b, err := c.Marshal(&GetDashboardRequest{FieldID: 3, Panel: "pest"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"fieldId":3,"panel":"pest"}` {
		t.Errorf("unexpected wire form %s", b)
	}

	var empty ListFieldsRequest
	if err := c.Unmarshal(nil, &empty); err != nil {
		t.Errorf("empty message should decode, got %v", err)
	}
}
