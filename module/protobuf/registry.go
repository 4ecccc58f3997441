// Package protobuf adapts the teacher's wire-format bindings to this
// module's Capability/class surface: a wrapped proto message is a
// class-registered instance (class.Class[*dynamicpb.Message]) instead
// of an ad hoc goja.Object carrying a "_pbMsg" property, and the whole
// binding is reachable as a module.ModuleDefinition instead of a
// hand-rolled Enable(rt) call.
package protobuf

import (
	"sync"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Registry holds descriptors and types loaded at runtime via
// loadDescriptorSet, independent of any one goja.Runtime - grounded on
// goja-protobuf/module.go's Module.localTypes/localFiles split, minus
// the runtime-bound fields, since this registry is shared by every
// realm a Binding is installed into.
type Registry struct {
	resolver *protoregistry.Types
	files    *protoregistry.Files
	types    *protoregistry.Types

	bindingsMu sync.Mutex
	bindings   map[*goja.Runtime]*Binding
}

// NewRegistry builds a Registry falling back to the global protobuf
// registries for any type not loaded locally, matching the teacher's
// default resolver/files fallback.
func NewRegistry() *Registry {
	return &Registry{
		resolver: protoregistry.GlobalTypes,
		files:    new(protoregistry.Files),
		types:    new(protoregistry.Types),
		bindings: make(map[*goja.Runtime]*Binding),
	}
}

// BindingFor returns the one Binding installed for rt, building it on
// first use. Other modules sharing this Registry (module/grpcclient,
// notably) call this instead of NewBinding directly, so a message
// wrapped by one module's require('protobuf') call unwraps cleanly
// through the other's - both end up holding the very same
// class.Class[*dynamicpb.Message], not two independently-registered
// ones with different hidden keys.
func (r *Registry) BindingFor(rt *goja.Runtime) (*Binding, error) {
	r.bindingsMu.Lock()
	defer r.bindingsMu.Unlock()
	if b, ok := r.bindings[rt]; ok {
		return b, nil
	}
	b, err := NewBinding(rt, r)
	if err != nil {
		return nil, err
	}
	r.bindings[rt] = b
	return b, nil
}

// LoadDescriptorSet parses a serialized descriptorpb.FileDescriptorSet
// and registers every contained message/enum type, returning their
// fully-qualified names.
func (r *Registry) LoadDescriptorSet(data []byte) ([]string, error) {
	fds := new(descriptorpb.FileDescriptorSet)
	if err := proto.Unmarshal(data, fds); err != nil {
		return nil, err
	}

	var names []string
	for _, fdp := range fds.GetFile() {
		if _, err := r.files.FindFileByPath(fdp.GetName()); err == nil {
			continue
		}
		fd, err := protodesc.NewFile(fdp, r.fileResolver())
		if err != nil {
			return nil, err
		}
		if err := r.files.RegisterFile(fd); err != nil {
			continue
		}
		names = append(names, r.registerFileTypes(fd)...)
	}
	return names, nil
}

func (r *Registry) fileResolver() protodesc.Resolver {
	return multiFileResolver{local: r.files}
}

// multiFileResolver checks the local file registry first, matching the
// teacher's own local-then-global lookup order.
type multiFileResolver struct {
	local *protoregistry.Files
}

func (m multiFileResolver) FindFileByPath(path string) (protoreflect.FileDescriptor, error) {
	if fd, err := m.local.FindFileByPath(path); err == nil {
		return fd, nil
	}
	return protoregistry.GlobalFiles.FindFileByPath(path)
}

func (m multiFileResolver) FindDescriptorByName(name protoreflect.FullName) (protoreflect.Descriptor, error) {
	if d, err := m.local.FindDescriptorByName(name); err == nil {
		return d, nil
	}
	return protoregistry.GlobalFiles.FindDescriptorByName(name)
}

func (r *Registry) registerFileTypes(fd protoreflect.FileDescriptor) []string {
	var names []string
	names = append(names, r.registerMessageTypes(fd.Messages())...)
	names = append(names, r.registerEnumTypes(fd.Enums())...)
	return names
}

func (r *Registry) registerMessageTypes(msgs protoreflect.MessageDescriptors) []string {
	var names []string
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		mt := dynamicpb.NewMessageType(md)
		if err := r.types.RegisterMessage(mt); err == nil {
			names = append(names, string(md.FullName()))
		}
		names = append(names, r.registerMessageTypes(md.Messages())...)
		names = append(names, r.registerEnumTypes(md.Enums())...)
	}
	return names
}

func (r *Registry) registerEnumTypes(enums protoreflect.EnumDescriptors) []string {
	var names []string
	for i := 0; i < enums.Len(); i++ {
		ed := enums.Get(i)
		et := dynamicpb.NewEnumType(ed)
		if err := r.types.RegisterEnum(et); err == nil {
			names = append(names, string(ed.FullName()))
		}
	}
	return names
}

// FindMessage looks up a message descriptor by fully-qualified name,
// checking locally-loaded types first, then the global registry.
func (r *Registry) FindMessage(fullName protoreflect.FullName) (protoreflect.MessageDescriptor, error) {
	if mt, err := r.types.FindMessageByName(fullName); err == nil {
		return mt.Descriptor(), nil
	}
	mt, err := r.resolver.FindMessageByName(fullName)
	if err != nil {
		return nil, err
	}
	return mt.Descriptor(), nil
}

// FindDescriptor looks up any descriptor (service, message, enum, ...)
// by fully-qualified name among the files loaded via LoadDescriptorSet,
// falling back to the global file registry - used by module/grpcclient
// to resolve a protoreflect.ServiceDescriptor for createClient.
func (r *Registry) FindDescriptor(fullName protoreflect.FullName) (protoreflect.Descriptor, error) {
	if d, err := r.files.FindDescriptorByName(fullName); err == nil {
		return d, nil
	}
	return protoregistry.GlobalFiles.FindDescriptorByName(fullName)
}

// TypeResolver returns the resolver protojson needs to expand
// google.protobuf.Any messages, checking local types before the
// global registry.
func (r *Registry) TypeResolver() interface {
	protoregistry.MessageTypeResolver
	protoregistry.ExtensionTypeResolver
} {
	return localFirstResolver{local: r.types, global: r.resolver}
}

type localFirstResolver struct {
	local, global *protoregistry.Types
}

func (l localFirstResolver) FindMessageByName(name protoreflect.FullName) (protoreflect.MessageType, error) {
	if mt, err := l.local.FindMessageByName(name); err == nil {
		return mt, nil
	}
	return l.global.FindMessageByName(name)
}

func (l localFirstResolver) FindMessageByURL(url string) (protoreflect.MessageType, error) {
	if mt, err := l.local.FindMessageByURL(url); err == nil {
		return mt, nil
	}
	return l.global.FindMessageByURL(url)
}

func (l localFirstResolver) FindExtensionByName(name protoreflect.FullName) (protoreflect.ExtensionType, error) {
	if et, err := l.local.FindExtensionByName(name); err == nil {
		return et, nil
	}
	return l.global.FindExtensionByName(name)
}

func (l localFirstResolver) FindExtensionByNumber(message protoreflect.FullName, field protoreflect.FieldNumber) (protoreflect.ExtensionType, error) {
	if et, err := l.local.FindExtensionByNumber(message, field); err == nil {
		return et, nil
	}
	return l.global.FindExtensionByNumber(message, field)
}
