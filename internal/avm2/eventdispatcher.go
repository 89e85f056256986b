package avm2

import "github.com/flashruntime/corevm/internal/value"

// This file is the Go-native wiring of flash.events.EventDispatcher's
// builtin class: instance constructor, addEventListener/removeEventListener/
// hasEventListener, and the two ruffle-private slots (target, dispatch_list)
// the reference runtime parks member data in that no script namespace can
// ever name directly.

func eventDispatcherNamespace() Namespace { return RuffleNamespace("EventDispatcher") }

var (
	targetSlotName       = NewQName(eventDispatcherNamespace(), "target")
	dispatchListSlotName = NewQName(eventDispatcherNamespace(), "dispatch_list")
)

func argAt(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined()
}

func dispatchListOf(this *Object, act *Activation) (*DispatchList, error) {
	v, err := this.GetProperty(act, dispatchListSlotName)
	if err != nil {
		return nil, err
	}
	dl, ok := v.ObjectValue().(*DispatchList)
	if !ok {
		return nil, NewScriptError(ErrInternalInvariant, "dispatch_list slot missing or wrong type")
	}
	return dl, nil
}

func eventDispatcherInstanceInit(act *Activation, this *Object, args []value.Value) (value.Value, error) {
	if this == nil {
		return value.Undefined(), nil
	}
	target := argAt(args, 0)
	if target.IsUndefined() {
		target = value.Null()
	}
	if err := this.InitProperty(targetSlotName, target); err != nil {
		return value.Undefined(), err
	}
	if err := this.InitProperty(dispatchListSlotName, value.Object(NewDispatchList())); err != nil {
		return value.Undefined(), err
	}
	return value.Undefined(), nil
}

func eventDispatcherClassInit(act *Activation, this *Object, args []value.Value) (value.Value, error) {
	return value.Undefined(), nil
}

func eventDispatcherAddListener(act *Activation, this *Object, args []value.Value) (value.Value, error) {
	if this == nil {
		return value.Undefined(), nil
	}
	dl, err := dispatchListOf(this, act)
	if err != nil {
		return value.Undefined(), err
	}
	eventType := stringOf(argAt(args, 0))
	listener, _ := argAt(args, 1).ObjectValue().(*Object)
	useCapture := truthy(argAt(args, 2))
	priority := int32(numberOf(argAt(args, 3)))
	dl.AddEventListener(eventType, priority, listener, useCapture)
	return value.Undefined(), nil
}

func eventDispatcherRemoveListener(act *Activation, this *Object, args []value.Value) (value.Value, error) {
	if this == nil {
		return value.Undefined(), nil
	}
	dl, err := dispatchListOf(this, act)
	if err != nil {
		return value.Undefined(), err
	}
	eventType := stringOf(argAt(args, 0))
	listener, _ := argAt(args, 1).ObjectValue().(*Object)
	useCapture := truthy(argAt(args, 2))
	dl.RemoveEventListener(eventType, listener, useCapture)
	return value.Undefined(), nil
}

func eventDispatcherHasListener(act *Activation, this *Object, args []value.Value) (value.Value, error) {
	if this == nil {
		return value.Bool(false), nil
	}
	dl, err := dispatchListOf(this, act)
	if err != nil {
		return value.Undefined(), err
	}
	eventType := stringOf(argAt(args, 0))
	return value.Bool(dl.HasEventListener(eventType)), nil
}

// CreateEventDispatcherClass constructs flash.events.EventDispatcher and
// registers it with the public Object class as its superclass, first
// registering a bare Object class if the registry does not already hold
// one.
func CreateEventDispatcherClass(r *Registry) (*Class, error) {
	objectName := PublicQName("Object")
	if _, ok := r.Lookup(objectName); !ok {
		r.CreateClass(NewClass(objectName, nil, nil, nil))
	}
	superName := objectName

	class := NewClass(
		NewQName(PackageNamespace("flash.events"), "EventDispatcher"),
		&superName,
		NewBuiltinMethod("EventDispatcher", eventDispatcherInstanceInit),
		NewBuiltinMethod("EventDispatcher$", eventDispatcherClassInit),
	)
	class.Implements(NewQName(PackageNamespace("flash.events"), "IEventDispatcher"))

	if err := class.DefineInstanceTrait(MethodTrait(
		PublicQName("addEventListener"),
		NewBuiltinMethod("addEventListener", eventDispatcherAddListener),
	)); err != nil {
		return nil, err
	}
	if err := class.DefineInstanceTrait(MethodTrait(
		PublicQName("removeEventListener"),
		NewBuiltinMethod("removeEventListener", eventDispatcherRemoveListener),
	)); err != nil {
		return nil, err
	}
	if err := class.DefineInstanceTrait(MethodTrait(
		PublicQName("hasEventListener"),
		NewBuiltinMethod("hasEventListener", eventDispatcherHasListener),
	)); err != nil {
		return nil, err
	}
	if err := class.DefineInstanceTrait(SlotTrait(targetSlotName, NewQName(RuffleNamespace(""), "BareObject"), value.Null())); err != nil {
		return nil, err
	}
	if err := class.DefineInstanceTrait(SlotTrait(dispatchListSlotName, NewQName(RuffleNamespace(""), "BareObject"), value.Null())); err != nil {
		return nil, err
	}

	r.CreateClass(class)
	r.Link()
	return class, nil
}
