package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeRequestInvalid, codes.InvalidArgument},
		{CodeCatalogNotSequence, codes.InvalidArgument},
		{CodeScriptInvalid, codes.FailedPrecondition},
		{CodeMerchantNotFound, codes.NotFound},
		{CodeNotFound, codes.NotFound},
		{CodeStorageFailure, codes.Unavailable},
		{CodeUnknown, codes.Internal},
	}
	for _, tc := range tests {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("%s.GRPCCode() = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestErrorChain(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := fmt.Errorf("generate: %w", Wrap(CodeStorageFailure, "save generation", cause))

	if got := CodeOf(err); got != CodeStorageFailure {
		t.Fatalf("CodeOf = %v, want %v", got, CodeStorageFailure)
	}
	if !stderrors.Is(err, New(CodeStorageFailure, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if got := CodeOf(cause); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %v, want %v", got, CodeUnknown)
	}
}

func TestWithMetadataCopies(t *testing.T) {
	base := New(CodeMerchantNotFound, "merchant not found")
	withName := base.WithMetadata("merchant", "smith")
	if base.Metadata != nil {
		t.Fatal("expected original error to stay unchanged")
	}
	if withName.Metadata["merchant"] != "smith" {
		t.Fatalf("metadata = %v", withName.Metadata)
	}
}

func TestToGRPC(t *testing.T) {
	if ToGRPC(nil) != nil {
		t.Fatal("expected nil for nil error")
	}

	err := ToGRPC(New(CodeMerchantNotFound, "merchant not found").WithMetadata("merchant", "smith"))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("expected status error, got %v", err)
	}
	if st.Code() != codes.NotFound {
		t.Fatalf("code = %v, want %v", st.Code(), codes.NotFound)
	}

	var info *errdetails.ErrorInfo
	var localized *errdetails.LocalizedMessage
	for _, d := range st.Details() {
		switch v := d.(type) {
		case *errdetails.ErrorInfo:
			info = v
		case *errdetails.LocalizedMessage:
			localized = v
		}
	}
	if info == nil || info.Reason != string(CodeMerchantNotFound) || info.Metadata["merchant"] != "smith" {
		t.Fatalf("error info = %v", info)
	}
	if localized == nil || localized.Locale != DefaultLocale || localized.Message == "" {
		t.Fatalf("localized message = %v", localized)
	}

	plain := ToGRPC(fmt.Errorf("boom"))
	if st, _ := status.FromError(plain); st.Code() != codes.Internal {
		t.Fatalf("plain error code = %v, want %v", st.Code(), codes.Internal)
	}
}

func TestFromGRPCRestoresDomainError(t *testing.T) {
	original := New(CodeMerchantNotFound, "merchant not found").WithMetadata("merchant", "smith")

	restored := FromGRPC(ToGRPC(original))
	if got := CodeOf(restored); got != CodeMerchantNotFound {
		t.Fatalf("code = %v, want %v", got, CodeMerchantNotFound)
	}
	var domainErr *Error
	if !stderrors.As(restored, &domainErr) {
		t.Fatalf("expected *Error, got %T", restored)
	}
	if domainErr.Metadata["merchant"] != "smith" {
		t.Fatalf("metadata = %v, want merchant=smith", domainErr.Metadata)
	}
}

func TestFromGRPCPassesThroughForeignErrors(t *testing.T) {
	plain := fmt.Errorf("boom")
	if got := FromGRPC(plain); got != plain {
		t.Fatalf("FromGRPC = %v, want original error", got)
	}
	bare := status.Error(codes.Unavailable, "down")
	if got := FromGRPC(bare); got != bare {
		t.Fatalf("FromGRPC = %v, want original status", got)
	}
}
