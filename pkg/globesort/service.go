package globesort

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	ServiceName        = "globesort.GlobeSort"
	PingMethod         = "/globesort.GlobeSort/Ping"
	SortIntegersMethod = "/globesort.GlobeSort/SortIntegers"
)

// GlobeSortClient is the client API for the GlobeSort service.
type GlobeSortClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SortIntegers(ctx context.Context, in *IntArray, opts ...grpc.CallOption) (*IntArray, error)
}

type globeSortClient struct {
	cc grpc.ClientConnInterface
}

// NewGlobeSortClient binds the service to a connection. Every call is
// sent with Codec.
func NewGlobeSortClient(cc grpc.ClientConnInterface) GlobeSortClient {
	return &globeSortClient{cc}
}

func (c *globeSortClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := c.cc.Invoke(ctx, PingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *globeSortClient) SortIntegers(ctx context.Context, in *IntArray, opts ...grpc.CallOption) (*IntArray, error) {
	out := new(IntArray)
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := c.cc.Invoke(ctx, SortIntegersMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GlobeSortServer is the server API for the GlobeSort service.
type GlobeSortServer interface {
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	SortIntegers(context.Context, *IntArray) (*IntArray, error)
}

// RegisterGlobeSortServer adds srv to s. The grpc.Server must be built
// with grpc.ForceServerCodec(Codec{}).
func RegisterGlobeSortServer(s grpc.ServiceRegistrar, srv GlobeSortServer) {
	s.RegisterService(&GlobeSort_ServiceDesc, srv)
}

func pingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GlobeSortServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PingMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GlobeSortServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func sortIntegersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(IntArray)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GlobeSortServer).SortIntegers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SortIntegersMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GlobeSortServer).SortIntegers(ctx, req.(*IntArray))
	}
	return interceptor(ctx, in, info, handler)
}

// GlobeSort_ServiceDesc is the grpc.ServiceDesc for the GlobeSort service.
var GlobeSort_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GlobeSortServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "SortIntegers", Handler: sortIntegersHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "globesort.proto",
}
