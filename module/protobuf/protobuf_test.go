package protobuf_test

import (
	"testing"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	qjsmodule "github.com/gojsembed/qjsgo/module"
	"github.com/gojsembed/qjsgo/module/protobuf"
)

// testDescriptorSet builds a minimal FileDescriptorSet for a testpb
// package with two messages (Person, with a nested Address field) -
// enough surface to exercise every scalar kind this package converts
// plus the message-kind recursive case, without needing protoc or a
// .proto file on disk.
func testDescriptorSet(t *testing.T) []byte {
	t.Helper()

	label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	str := descriptorpb.FieldDescriptorProto_TYPE_STRING
	i32 := descriptorpb.FieldDescriptorProto_TYPE_INT32
	bl := descriptorpb.FieldDescriptorProto_TYPE_BOOL
	msgType := descriptorpb.FieldDescriptorProto_TYPE_MESSAGE

	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("test.proto"),
		Package: proto.String("testpb"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Address"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: proto.String("city"), Number: proto.Int32(1), Label: &label, Type: &str},
				},
			},
			{
				Name: proto.String("Person"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: proto.String("name"), Number: proto.Int32(1), Label: &label, Type: &str},
					{Name: proto.String("age"), Number: proto.Int32(2), Label: &label, Type: &i32},
					{Name: proto.String("active"), Number: proto.Int32(3), Label: &label, Type: &bl},
					{
						Name: proto.String("address"), Number: proto.Int32(4), Label: &label, Type: &msgType,
						TypeName: proto.String(".testpb.Address"),
					},
				},
			},
		},
	}

	set := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fd}}
	data, err := proto.Marshal(set)
	if err != nil {
		t.Fatalf("marshal descriptor set: %v", err)
	}
	return data
}

func newRuntime(t *testing.T) (*goja.Runtime, *protobuf.Registry) {
	t.Helper()
	rt := goja.New()
	reg := protobuf.NewRegistry()

	modReg := qjsmodule.NewRegistry(nil)
	modReg.Define(protobuf.ModuleName, protobuf.Definition(reg))
	modReg.Enable(rt)

	return rt, reg
}

func run(t *testing.T, rt *goja.Runtime, src string) goja.Value {
	t.Helper()
	v, err := rt.RunString(src)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return v
}

func TestLoadDescriptorSetRegistersMessageNames(t *testing.T) {
	rt, _ := newRuntime(t)
	data := testDescriptorSet(t)

	rt.Set("descriptorBytes", rt.NewArrayBuffer(data))
	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
	`)
	var names []string
	if err := rt.ExportTo(got, &names); err != nil {
		t.Fatalf("export names: %v", err)
	}
	want := map[string]bool{"testpb.Address": true, "testpb.Person": true}
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2: %v", len(names), names)
	}
	for _, n := range names {
		if !want[n] {
			t.Fatalf("unexpected registered name %q", n)
		}
	}
}

func TestMessageTypeConstructGetSetHasClear(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');
		const p = new Person();
		p.set('name', 'Ada');
		p.set('age', 37);
		p.set('active', true);

		const beforeAddress = p.get('address');
		p.has('name') && p.has('age') && p.has('active') &&
			beforeAddress === null &&
			p.get('name') === 'Ada' && p.get('age') === 37 && p.get('active') === true &&
			p.$type === 'testpb.Person';
	`)
	if !got.ToBoolean() {
		t.Fatalf("construct/get/set/has assertions failed")
	}

	cleared := run(t, rt, `
		const pb2 = require('protobuf');
		const Person2 = pb2.messageType('testpb.Person');
		const q = new Person2();
		q.set('name', 'Ada');
		q.clear('name');
		q.has('name');
	`)
	if cleared.ToBoolean() {
		t.Fatalf("clear('name') left has('name') true")
	}
}

func TestNestedMessageFieldGetSet(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');
		const Address = pb.messageType('testpb.Address');

		const a = new Address();
		a.set('city', 'Springfield');

		const p = new Person();
		p.set('name', 'Ada');
		p.set('address', a);

		const gotAddr = p.get('address');
		p.has('address') && gotAddr.get('city') === 'Springfield';
	`)
	if !got.ToBoolean() {
		t.Fatalf("nested message get/set assertions failed")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');

		const p = new Person();
		p.set('name', 'Grace');
		p.set('age', 85);

		const bytes = pb.encode(p);
		const decoded = pb.decode(Person, bytes);
		pb.equals(p, decoded) && decoded.get('name') === 'Grace' && decoded.get('age') === 85;
	`)
	if !got.ToBoolean() {
		t.Fatalf("encode/decode round trip failed")
	}
}

func TestToJSONFromJSONRoundTrip(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');

		const p = new Person();
		p.set('name', 'Linus');
		p.set('active', true);

		const obj = pb.toJSON(p);
		const restored = pb.fromJSON(Person, obj);
		pb.equals(p, restored) && obj.name === 'Linus' && obj.active === true;
	`)
	if !got.ToBoolean() {
		t.Fatalf("toJSON/fromJSON round trip failed")
	}
}

func TestCloneProducesIndependentEqualMessage(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');

		const p = new Person();
		p.set('name', 'Margaret');

		const clone = pb.clone(p);
		clone.set('name', 'Changed');

		pb.equals(clone, clone) && p.get('name') === 'Margaret' && clone.get('name') === 'Changed' &&
			!pb.equals(p, clone);
	`)
	if !got.ToBoolean() {
		t.Fatalf("clone independence assertions failed")
	}
}

func TestMarshalUnmarshalFormatJSON(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');

		const p = new Person();
		p.set('name', 'Ada');
		p.set('age', 36);

		const compact = pb.marshalJSON(p);
		const pretty = pb.formatJSON(p);
		const restored = pb.unmarshalJSON('testpb.Person', compact);

		typeof compact === 'string' && compact.indexOf('\n') === -1 &&
			pretty.indexOf('\n') !== -1 &&
			pb.equals(p, restored) &&
			restored.get('name') === 'Ada' && restored.get('age') === 36;
	`)
	if !got.ToBoolean() {
		t.Fatalf("marshalJSON/unmarshalJSON/formatJSON assertions failed")
	}
}

func TestMarshalJSONOptionsAffectOutput(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');

		const p = new Person();
		p.set('name', 'Grace');

		const withDefaults = pb.marshalJSON(p, {emitDefaults: true});
		const withoutDefaults = pb.marshalJSON(p);
		JSON.parse(withDefaults).active === false && JSON.parse(withoutDefaults).active === undefined;
	`)
	if !got.ToBoolean() {
		t.Fatalf("marshalJSON options assertions failed")
	}
}

func TestIsMessage(t *testing.T) {
	rt, _ := newRuntime(t)
	rt.Set("descriptorBytes", rt.NewArrayBuffer(testDescriptorSet(t)))

	got := run(t, rt, `
		const pb = require('protobuf');
		pb.loadDescriptorSet(descriptorBytes);
		const Person = pb.messageType('testpb.Person');
		const p = new Person();
		pb.isMessage(p) && !pb.isMessage({}) && !pb.isMessage(42) && !pb.isMessage(null);
	`)
	if !got.ToBoolean() {
		t.Fatalf("isMessage assertions failed")
	}
}

func TestRegistrySharedAcrossRuntimes(t *testing.T) {
	reg := protobuf.NewRegistry()
	data := testDescriptorSet(t)

	rt1 := goja.New()
	modReg1 := qjsmodule.NewRegistry(nil)
	modReg1.Define(protobuf.ModuleName, protobuf.Definition(reg))
	modReg1.Enable(rt1)
	rt1.Set("descriptorBytes", rt1.NewArrayBuffer(data))
	run(t, rt1, `require('protobuf').loadDescriptorSet(descriptorBytes);`)

	rt2 := goja.New()
	modReg2 := qjsmodule.NewRegistry(nil)
	modReg2.Define(protobuf.ModuleName, protobuf.Definition(reg))
	modReg2.Enable(rt2)

	got := run(t, rt2, `
		const pb = require('protobuf');
		const Person = pb.messageType('testpb.Person');
		const p = new Person();
		p.set('name', 'shared');
		p.get('name') === 'shared';
	`)
	if !got.ToBoolean() {
		t.Fatalf("descriptor loaded in rt1 was not visible from rt2 via the shared Registry")
	}
}
