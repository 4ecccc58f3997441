package grpcclient

import (
	"github.com/dop251/goja"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/gojsembed/qjsgo/jserr"
)

// channel carries a dialed *grpc.ClientConn across the goja export/import
// boundary on a dial() result's hidden property, mirroring
// goja-grpc/dial.go's dialConn - minus the in-process-channel fallback
// parseChannelOpt supported there, since this package has no companion
// in-process server to dial against (see DESIGN.md).
type channel struct {
	conn   *grpc.ClientConn
	target string
}

// jsDial opens a real network connection and returns a JS object wrapping
// it: close()/target() plus a hidden _channel property createClient reads.
// Grounded on goja-grpc/dial.go's jsDial, adapted to grpc.NewClient's
// real dialing instead of the teacher's inprocgrpc.Channel default.
func (b *binding) jsDial(call goja.FunctionCall) goja.Value {
	rt := b.rt
	target := call.Argument(0).String()

	useInsecure := true
	var dialOpts []grpc.DialOption
	if optsVal := call.Argument(1); !goja.IsUndefined(optsVal) && !goja.IsNull(optsVal) {
		opts := optsVal.ToObject(rt)
		if v := opts.Get("insecure"); v != nil && !goja.IsUndefined(v) {
			useInsecure = v.ToBoolean()
		}
		if v := opts.Get("authority"); v != nil && !goja.IsUndefined(v) {
			dialOpts = append(dialOpts, grpc.WithAuthority(v.String()))
		}
	}
	if useInsecure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		jserr.ThrowError(rt, jserr.Unknown(err))
	}

	ch := &channel{conn: conn, target: target}
	obj := rt.NewObject()
	if err := obj.Set("_channel", ch); err != nil {
		jserr.ThrowError(rt, jserr.Borrow(err.Error()))
	}
	if err := obj.Set("target", rt.ToValue(func(goja.FunctionCall) goja.Value {
		return rt.ToValue(target)
	})); err != nil {
		jserr.ThrowError(rt, jserr.Borrow(err.Error()))
	}
	if err := obj.Set("close", rt.ToValue(func(goja.FunctionCall) goja.Value {
		_ = conn.Close()
		return goja.Undefined()
	})); err != nil {
		jserr.ThrowError(rt, jserr.Borrow(err.Error()))
	}
	return obj
}

// extractChannel recovers the *channel a dial() result wraps.
func extractChannel(val goja.Value) (*channel, error) {
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil, jserr.FromJS("object", "channel (result of grpc.dial)")
	}
	chVal := obj.Get("_channel")
	if chVal == nil || goja.IsUndefined(chVal) {
		return nil, jserr.FromJS("not a dialed channel", "createClient")
	}
	ch, ok := chVal.Export().(*channel)
	if !ok {
		return nil, jserr.FromJS("not a dialed channel", "createClient")
	}
	return ch, nil
}
