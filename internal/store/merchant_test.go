package store

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Activity bumps and payment updates treat a missing merchant doc as
// zero rows affected; anything else still surfaces.
func TestIgnoreNotFound(t *testing.T) {
	if err := ignoreNotFound(nil); err != nil {
		t.Fatalf("nil error should stay nil, got %v", err)
	}
	if err := ignoreNotFound(status.Error(codes.NotFound, "no document")); err != nil {
		t.Fatalf("NotFound should be dropped, got %v", err)
	}
	if err := ignoreNotFound(status.Error(codes.PermissionDenied, "nope")); err == nil {
		t.Fatal("PermissionDenied must not be dropped")
	}
	if err := ignoreNotFound(errors.New("connection reset")); err == nil {
		t.Fatal("plain errors must not be dropped")
	}
}
