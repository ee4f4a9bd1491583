package grpc

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ledgerServiceName             = "inventory.v1.LedgerService"
	productExistsMethod           = "/" + ledgerServiceName + "/ProductExists"
	getTransactionSummaryMethod   = "/" + ledgerServiceName + "/GetTransactionSummary"
	ledgerServiceProtoDescription = "inventory/v1/ledger.proto"
)

// LedgerServiceServer — сервис для соседних сервисов: проверка товара и сводка по журналу.
// Сообщения — стандартные обёртки protobuf, собственный .proto не нужен.
type LedgerServiceServer interface {
	ProductExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	GetTransactionSummary(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
}

var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ledgerServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProductExists", Handler: productExistsHandler},
		{MethodName: "GetTransactionSummary", Handler: getTransactionSummaryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ledgerServiceProtoDescription,
}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

func productExistsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).ProductExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: productExistsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).ProductExists(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getTransactionSummaryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetTransactionSummary(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getTransactionSummaryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).GetTransactionSummary(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

type LedgerService struct {
	prUC   usecase.ProductUC
	txUC   usecase.TransactionUC
	logger logger.Logger
}

func NewLedgerService(prUC usecase.ProductUC, txUC usecase.TransactionUC, logger logger.Logger) *LedgerService {
	return &LedgerService{prUC: prUC, txUC: txUC, logger: logger}
}

func (g *LedgerService) ProductExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	const op = "grpc.ProductExists"

	if req.GetValue() <= 0 {
		return nil, GRPCErrorResponse(e.Wrap(op, e.ErrInvalidID))
	}

	exists, err := g.prUC.ProductExists(ctx, req.GetValue())
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return wrapperspb.Bool(exists), nil
}

func (g *LedgerService) GetTransactionSummary(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	const op = "grpc.GetTransactionSummary"

	if req.GetValue() <= 0 {
		return nil, GRPCErrorResponse(e.Wrap(op, e.ErrInvalidID))
	}

	summary, err := g.txUC.Summarize(ctx, req.GetValue())
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := structpb.NewStruct(map[string]any{
		"product_id":        summary.ProductID,
		"total_in":          summary.TotalIn,
		"total_out":         summary.TotalOut,
		"net_change":        summary.NetChange,
		"transaction_count": summary.TransactionCount,
	})
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

// LedgerClient реализует клиент LedgerService поверх готового соединения.
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

func (c *LedgerClient) ProductExists(ctx context.Context, productID int64, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, productExistsMethod, wrapperspb.Int64(productID), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *LedgerClient) GetTransactionSummary(ctx context.Context, productID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getTransactionSummaryMethod, wrapperspb.Int64(productID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
