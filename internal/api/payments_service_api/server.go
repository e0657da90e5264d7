package payments_service_api

import (
	"context"
	"errors"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/Naim3097/BOOX/internal/service/payment"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName       = "boox.payments.v1.PaymentStatusService"
	checkStatusMethod = "/" + ServiceName + "/CheckStatus"
)

// PaymentStatusServer answers status lookups for back-office tools. Requests
// and responses are google.protobuf.Struct so no generated code is needed.
type PaymentStatusServer interface {
	CheckStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Server implements PaymentStatusServer on top of the status reconciler.
type Server struct {
	payments payment.PaymentUseCase
}

func NewServer(payments payment.PaymentUseCase) *Server {
	return &Server{payments: payments}
}

// CheckStatus expects {"invoiceNo": "..."}.
func (s *Server) CheckStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	invoiceNo := req.GetFields()["invoiceNo"].GetStringValue()

	view, err := s.payments.CheckStatus(ctx, invoiceNo)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(view)
}

func toStruct(v *domain.TransactionView) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]interface{}{
		"invoiceNo":     v.InvoiceNo,
		"status":        v.Status,
		"outcome":       string(v.Outcome),
		"amount":        v.Amount,
		"amountWithFee": v.AmountWithFee,
		"fee":           v.Fee,
		"paymentMethod": v.PaymentMethod,
		"bankProvider":  v.BankProvider,
		"transactionId": v.TransactionID,
		"customer": map[string]interface{}{
			"name":         v.Customer.Name,
			"phone_number": v.Customer.Phone,
			"email":        v.Customer.Email,
		},
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode transaction: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigError
		gatewayErr    *domain.GatewayError
		notFoundErr   *domain.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Message)
	case errors.As(err, &configErr):
		return status.Error(codes.FailedPrecondition, "payment gateway not configured")
	case errors.As(err, &gatewayErr):
		return status.Error(codes.Unavailable, gatewayErr.Description)
	case errors.As(err, &notFoundErr):
		return status.Error(codes.NotFound, notFoundErr.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func checkStatusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PaymentStatusServer).CheckStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkStatusMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PaymentStatusServer).CheckStatus(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentStatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckStatus", Handler: checkStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "boox/payments/v1/payments.proto",
}

func Register(s grpc.ServiceRegistrar, srv PaymentStatusServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls PaymentStatusService on a remote server.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CheckStatus(ctx context.Context, invoiceNo string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"invoiceNo": invoiceNo})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, checkStatusMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

var _ PaymentStatusServer = (*Server)(nil)
