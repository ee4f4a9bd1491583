package grpc

import (
	"errors"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, e.ErrNotFound.Error())
	case errors.Is(err, e.ErrValidation):
		return status.Error(codes.InvalidArgument, e.ErrValidation.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}
