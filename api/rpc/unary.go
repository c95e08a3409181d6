// Package rpc builds grpc.MethodDesc values for unary methods whose messages are plain structs.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Unary returns the descriptor of a unary method. call receives the registered service
// implementation and the decoded request; interceptors see FullMethod "/service/method".
func Unary[Req any, Resp any](service, method string, call func(srv interface{}, ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Invoke calls a unary method on conn, sending the request in the codec named by subtype.
func Invoke[Req any, Resp any](ctx context.Context, conn grpc.ClientConnInterface, service, method, subtype string, req *Req, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append(opts, grpc.CallContentSubtype(subtype))
	if err := conn.Invoke(ctx, "/"+service+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
