package jserr

import (
	"github.com/dop251/goja"
)

// CaughtError wraps a JS-thrown value that has been pulled out of the
// engine. It is produced by Catch from a *goja.Exception, and can be
// reinstated with Throw.
type CaughtError struct {
	// Value is the raw thrown value. It may or may not be an Error
	// instance (JS allows throwing anything).
	Value goja.Value
	// Exception is populated when Value looks like a well-formed JS
	// Error (has message/stack); nil otherwise.
	Exception *ExceptionInfo
}

// ExceptionInfo mirrors the fields exposed by §7 of the exception view:
// message, file, line, column, stack.
type ExceptionInfo struct {
	Message string
	File    string
	Line    int
	Column  int
	Stack   string
}

func (c *CaughtError) Error() string {
	if c.Exception != nil && c.Exception.Message != "" {
		return c.Exception.Message
	}
	if c.Value != nil {
		return c.Value.String()
	}
	return "uncaught JavaScript exception"
}

// Catch builds a *CaughtError holding the value thrown with gojaErr, the
// *goja.Exception that the engine raised; callers typically obtain it via
// errors.As on the error returned from RunString/RunProgram/a function call.
// Exception is filled in when the thrown value is an object carrying a
// message or stack property.
func Catch(gojaErr *goja.Exception) *CaughtError {
	v := gojaErr.Value()
	c := &CaughtError{Value: v}
	if obj, ok := v.(*goja.Object); ok {
		msg := obj.Get("message")
		stack := obj.Get("stack")
		if msg != nil || stack != nil {
			info := &ExceptionInfo{}
			if msg != nil && !goja.IsUndefined(msg) {
				info.Message = msg.String()
			}
			if stack != nil && !goja.IsUndefined(stack) {
				info.Stack = stack.String()
			}
			if fileVal := obj.Get("fileName"); fileVal != nil && !goja.IsUndefined(fileVal) {
				info.File = fileVal.String()
			}
			if lineVal := obj.Get("lineNumber"); lineVal != nil && !goja.IsUndefined(lineVal) {
				info.Line = int(lineVal.ToInteger())
			}
			c.Exception = info
		}
	}
	return c
}

// Throw reinstates a CaughtError by panicking with its original thrown
// value, rt.ToValue(c.Value), whatever its type; goja's own call-stack
// machinery turns a goja.Value panic raised inside a native function
// back into a pending JS exception carrying that value.
func Throw(rt *goja.Runtime, c *CaughtError) {
	panic(rt.ToValue(c.Value))
}
