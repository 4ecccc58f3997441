package grpcclient

import (
	"github.com/dop251/goja"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gojsembed/qjsgo/jserr"
)

// statusCodes mirrors the 17 standard gRPC status codes goja-grpc/status.go
// exposes via statusObject, as {NAME: numeric code} constants.
var statusCodes = []struct {
	name string
	code codes.Code
}{
	{"OK", codes.OK},
	{"CANCELLED", codes.Canceled},
	{"UNKNOWN", codes.Unknown},
	{"INVALID_ARGUMENT", codes.InvalidArgument},
	{"DEADLINE_EXCEEDED", codes.DeadlineExceeded},
	{"NOT_FOUND", codes.NotFound},
	{"ALREADY_EXISTS", codes.AlreadyExists},
	{"PERMISSION_DENIED", codes.PermissionDenied},
	{"RESOURCE_EXHAUSTED", codes.ResourceExhausted},
	{"FAILED_PRECONDITION", codes.FailedPrecondition},
	{"ABORTED", codes.Aborted},
	{"OUT_OF_RANGE", codes.OutOfRange},
	{"UNIMPLEMENTED", codes.Unimplemented},
	{"INTERNAL", codes.Internal},
	{"UNAVAILABLE", codes.Unavailable},
	{"DATA_LOSS", codes.DataLoss},
	{"UNAUTHENTICATED", codes.Unauthenticated},
}

// statusObject builds the module's `status` export: the code constants
// plus a createError factory, grounded on goja-grpc/status.go's
// statusObject - minus the details/anypb plumbing wrapStatusDetails
// added there (see DESIGN.md).
func (b *binding) statusObject() (*goja.Object, error) {
	rt := b.rt
	obj := rt.NewObject()
	for _, sc := range statusCodes {
		if err := obj.Set(sc.name, rt.ToValue(int64(sc.code))); err != nil {
			return nil, jserr.Borrow(err.Error())
		}
	}
	if err := obj.Set("createError", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		code := codes.Code(call.Argument(0).ToInteger())
		message := call.Argument(1).String()
		return b.newGrpcError(code, message)
	})); err != nil {
		return nil, jserr.Borrow(err.Error())
	}
	return obj, nil
}

// newGrpcError builds a JS Error carrying the status code as own
// properties, grounded on goja-grpc/status.go's newGrpcError.
func (b *binding) newGrpcError(code codes.Code, message string) *goja.Object {
	rt := b.rt
	errObj, err := rt.New(rt.Get("Error"), rt.ToValue(message))
	if err != nil {
		errObj = rt.NewObject()
		_ = errObj.Set("message", message)
	}
	_ = errObj.Set("name", "GrpcError")
	_ = errObj.Set("code", int64(code))
	_ = errObj.Set("codeName", code.String())
	return errObj
}

// grpcErrorFromGoError converts an error returned by a ClientConn.Invoke
// call into the same shaped GrpcError newGrpcError builds, recovering the
// status code status.FromError finds embedded in it and falling back to
// codes.Unknown for a plain non-status error.
func (b *binding) grpcErrorFromGoError(err error) *goja.Object {
	st, ok := status.FromError(err)
	if !ok {
		return b.newGrpcError(codes.Unknown, err.Error())
	}
	return b.newGrpcError(st.Code(), st.Message())
}
