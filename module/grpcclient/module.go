// Package grpcclient adapts the teacher's gRPC client binding to this
// module's Capability/class surface: dial/createClient build real
// google.golang.org/grpc connections instead of the teacher's
// inprocgrpc.Channel, and unary calls settle their promise through
// asynccore.Queue's Spawn/Schedule instead of a hand-rolled
// goroutine-plus-adapter pair. See DESIGN.md for the scope this
// deliberately drops (streaming RPCs, servers, reflection, call-detail
// metadata beyond plain headers).
package grpcclient

import (
	qjsmodule "github.com/gojsembed/qjsgo/module"

	"github.com/gojsembed/qjsgo/asynccore"
	"github.com/gojsembed/qjsgo/module/protobuf"
)

// ModuleName is the specifier scripts use to require this binding:
// require('grpc').
const ModuleName = "grpc"

// definition adapts a fresh binding per runtime to qjsmodule.ModuleDefinition.
// reg is shared with whatever module/protobuf.Definition the host wires in
// (so messageType descriptors and wrapped instances are interchangeable
// between the two); queue is the engine's own asynccore.Queue, so a
// pending RPC keeps the engine's event loop alive the same way any other
// async host call would.
type definition struct {
	registry *protobuf.Registry
	queue    *asynccore.Queue
}

// Definition returns a module.ModuleDefinition for require('grpc').
func Definition(reg *protobuf.Registry, queue *asynccore.Queue) qjsmodule.ModuleDefinition {
	return definition{registry: reg, queue: queue}
}

func (definition) Declare(d *qjsmodule.Declarations) error {
	for _, name := range []string{"dial", "createClient", "status"} {
		if err := d.Declare(name); err != nil {
			return err
		}
	}
	return nil
}

func (def definition) Evaluate(cap qjsmodule.Capability, exports *qjsmodule.Exports) error {
	rt := cap.Runtime()
	pb, err := def.registry.BindingFor(rt)
	if err != nil {
		return err
	}
	b := &binding{rt: rt, reg: def.registry, pb: pb, queue: def.queue}

	if err := exports.Set("dial", rt.ToValue(b.jsDial)); err != nil {
		return err
	}
	if err := exports.Set("createClient", rt.ToValue(b.jsCreateClient)); err != nil {
		return err
	}
	statusObj, err := b.statusObject()
	if err != nil {
		return err
	}
	if err := exports.Set("status", statusObj); err != nil {
		return err
	}
	return nil
}
