package processor

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "paytr.processor.v1.PaymentProcessor"

// PaymentProcessorServer is the server API of the PaymentProcessor service.
// Requests and responses carry the same JSON shapes as the HTTP surface.
type PaymentProcessorServer interface {
	Initiate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Authorize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateData(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Retrieve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Capture(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refund(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Cancel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(PaymentProcessorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, method unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return method(srv.(PaymentProcessorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return method(srv.(PaymentProcessorServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the PaymentProcessor service for grpc.Server registration
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentProcessorServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Initiate", PaymentProcessorServer.Initiate),
		unary("Authorize", PaymentProcessorServer.Authorize),
		unary("Update", PaymentProcessorServer.Update),
		unary("UpdateData", PaymentProcessorServer.UpdateData),
		unary("Retrieve", PaymentProcessorServer.Retrieve),
		unary("Capture", PaymentProcessorServer.Capture),
		unary("Refund", PaymentProcessorServer.Refund),
		unary("Cancel", PaymentProcessorServer.Cancel),
		unary("Delete", PaymentProcessorServer.Delete),
		unary("GetStatus", PaymentProcessorServer.GetStatus),
		unary("CreateToken", PaymentProcessorServer.CreateToken),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterPaymentProcessorServer registers srv with s
func RegisterPaymentProcessorServer(s grpc.ServiceRegistrar, srv PaymentProcessorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the PaymentProcessor service
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a PaymentProcessor client on cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method, for example "Initiate", with req
func (c *Client) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
