package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "walletflow.v1.TransferService"

// Method names of the TransferService
const (
	MethodTransfer      = "Transfer"
	MethodGetWallet     = "GetWallet"
	MethodListWallets   = "ListWallets"
	MethodOpenWallet    = "OpenWallet"
	MethodGetTransfer   = "GetTransfer"
	MethodListTransfers = "ListTransfers"
)

// TransferServiceServer is the server API for the TransferService.
// Requests and responses are carried as google.protobuf.Struct messages.
type TransferServiceServer interface {
	Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListWallets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenWallet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransfers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// TransferServiceDesc describes the TransferService for grpc.Server.RegisterService
var TransferServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransferServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodTransfer, Handler: unaryHandler(MethodTransfer, TransferServiceServer.Transfer)},
		{MethodName: MethodGetWallet, Handler: unaryHandler(MethodGetWallet, TransferServiceServer.GetWallet)},
		{MethodName: MethodListWallets, Handler: unaryHandler(MethodListWallets, TransferServiceServer.ListWallets)},
		{MethodName: MethodOpenWallet, Handler: unaryHandler(MethodOpenWallet, TransferServiceServer.OpenWallet)},
		{MethodName: MethodGetTransfer, Handler: unaryHandler(MethodGetTransfer, TransferServiceServer.GetTransfer)},
		{MethodName: MethodListTransfers, Handler: unaryHandler(MethodListTransfers, TransferServiceServer.ListTransfers)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "walletflow/v1/transfer_service.proto",
}

// RegisterTransferServiceServer registers srv with the gRPC server
func RegisterTransferServiceServer(s grpc.ServiceRegistrar, srv TransferServiceServer) {
	s.RegisterService(&TransferServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryMethod func(TransferServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler builds the grpc.MethodHandler that decodes the request and
// runs it through the interceptor chain
func unaryHandler(method string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TransferServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TransferServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TransferServiceClient is the client API for the TransferService
type TransferServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTransferServiceClient creates a client bound to the given connection
func NewTransferServiceClient(cc grpc.ClientConnInterface) *TransferServiceClient {
	return &TransferServiceClient{cc: cc}
}

// Call invokes a TransferService method by name
func (c *TransferServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Transfer invokes the Transfer RPC
func (c *TransferServiceClient) Transfer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodTransfer, in, opts...)
}

// GetWallet invokes the GetWallet RPC
func (c *TransferServiceClient) GetWallet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodGetWallet, in, opts...)
}

// ListWallets invokes the ListWallets RPC
func (c *TransferServiceClient) ListWallets(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodListWallets, in, opts...)
}

// OpenWallet invokes the OpenWallet RPC
func (c *TransferServiceClient) OpenWallet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodOpenWallet, in, opts...)
}

// GetTransfer invokes the GetTransfer RPC
func (c *TransferServiceClient) GetTransfer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodGetTransfer, in, opts...)
}

// ListTransfers invokes the ListTransfers RPC
func (c *TransferServiceClient) ListTransfers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.Call(ctx, MethodListTransfers, in, opts...)
}
