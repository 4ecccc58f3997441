package grpcclient

import (
	"context"
	"time"
	"unicode"

	"github.com/dop251/goja"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/gojsembed/qjsgo/asynccore"
	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/module/protobuf"
)

// binding is this runtime's installed instance: the channel/status/client
// factories all close over the same *protobuf.Binding and *asynccore.Queue,
// the way goja-grpc's Module closes over one runtime/protobuf/adapter
// triple for every export it builds.
type binding struct {
	rt    *goja.Runtime
	reg   *protobuf.Registry
	pb    *protobuf.Binding
	queue *asynccore.Queue
}

// jsCreateClient resolves serviceName against the shared protobuf.Registry
// and builds one JS method per unary RPC, dispatching each through
// unaryMethod. Grounded on goja-grpc/client.go's jsCreateClient and
// service.go's resolveService/lowerFirst, restricted to unary RPCs - see
// DESIGN.md for why streaming methods are skipped rather than wired.
func (b *binding) jsCreateClient(call goja.FunctionCall) goja.Value {
	rt := b.rt
	serviceName := call.Argument(0).String()

	ch, err := extractChannel(call.Argument(1))
	if err != nil {
		jserr.ThrowError(rt, err)
	}

	desc, err := b.reg.FindDescriptor(protoreflect.FullName(serviceName))
	if err != nil {
		jserr.ThrowError(rt, jserr.FromJSMessage("service descriptor", serviceName, err.Error()))
	}
	sd, ok := desc.(protoreflect.ServiceDescriptor)
	if !ok {
		jserr.ThrowError(rt, jserr.FromJSMessage("service descriptor", serviceName, "name does not resolve to a service"))
	}

	clientObj := rt.NewObject()
	methods := sd.Methods()
	for i := 0; i < methods.Len(); i++ {
		md := methods.Get(i)
		if md.IsStreamingClient() || md.IsStreamingServer() {
			continue
		}
		fullMethod := "/" + string(sd.FullName()) + "/" + string(md.Name())
		fn := b.unaryMethod(ch.conn, fullMethod, md.Output())
		if err := clientObj.Set(lowerFirst(string(md.Name())), fn); err != nil {
			jserr.ThrowError(rt, jserr.Borrow(err.Error()))
		}
	}
	return clientObj
}

// unaryMethod builds one JS method calling fullMethod over cc, returning a
// Promise. This follows function.AsyncFunc's own two-phase shape (argument
// handling synchronously in the trampoline, the blocking call on a spawned
// goroutine, settlement scheduled back onto the runtime thread) but is
// hand-composed directly against asynccore.Queue rather than calling
// AsyncFunc itself - see DESIGN.md for why: unwrapping the request message
// needs this call's *protobuf.Binding, which AsyncFunc's globally
// registered value.Converter[T] extraction layer has no way to receive.
func (b *binding) unaryMethod(cc grpc.ClientConnInterface, fullMethod string, outputDesc protoreflect.MessageDescriptor) goja.Value {
	rt := b.rt
	return rt.ToValue(func(call goja.FunctionCall) goja.Value {
		reqMsg, err := b.pb.Unwrap(call.Argument(0))
		if err != nil {
			jserr.ThrowError(rt, err)
		}

		ctx := context.Background()
		var cancel context.CancelFunc
		if optsVal := call.Argument(1); !goja.IsUndefined(optsVal) && !goja.IsNull(optsVal) {
			opts := optsVal.ToObject(rt)
			if tm := opts.Get("timeoutMs"); tm != nil && !goja.IsUndefined(tm) {
				if ms := tm.ToInteger(); ms > 0 {
					ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
				}
			}
			if mdVal := opts.Get("metadata"); mdVal != nil && !goja.IsUndefined(mdVal) {
				ctx = metadata.NewOutgoingContext(ctx, extractMetadata(rt, mdVal))
			}
		}

		promise, resolve, reject := rt.NewPromise()

		b.queue.Spawn(func() {
			if cancel != nil {
				defer cancel()
			}
			respMsg := dynamicpb.NewMessage(outputDesc)
			invokeErr := cc.Invoke(ctx, fullMethod, reqMsg, respMsg)

			b.queue.Schedule(func() {
				if invokeErr != nil {
					reject(b.grpcErrorFromGoError(invokeErr))
					return
				}
				respObj, wrapErr := b.pb.Wrap(respMsg)
				if wrapErr != nil {
					reject(rt.NewGoError(wrapErr))
					return
				}
				resolve(respObj)
			})
		})

		return rt.ToValue(promise)
	})
}

// extractMetadata reads a plain {key: value, ...} JS object into outgoing
// gRPC metadata, grounded on goja-grpc/callopts.go's applyMetadata -
// restricted to single string values, dropping that file's array-valued
// (repeated header) support as unneeded scope (see DESIGN.md).
func extractMetadata(rt *goja.Runtime, val goja.Value) metadata.MD {
	md := metadata.MD{}
	obj := val.ToObject(rt)
	for _, key := range obj.Keys() {
		md.Append(key, obj.Get(key).String())
	}
	return md
}

// lowerFirst turns a PascalCase RPC method name (Go/proto convention) into
// the lowerCamelCase name JS code calls it by, matching
// goja-grpc/service.go's lowerFirst.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
