package vm

// callValue dispatches a call based on the callee's type
func (vm *VM) callValue(callee Value, argCount int) error {
	if callee.IsObj() {
		switch fn := callee.Obj.(type) {
		case *Function:
			return vm.call(fn, argCount)
		case *Native:
			return vm.callNative(fn, argCount)
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

// call pushes a new frame for a compiled function. The frame's base
// points at the callee so parameters land in slots 1..arity.
func (vm *VM) call(fn *Function, argCount int) error {
	if argCount != fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if vm.frameCount == len(vm.frames) {
		return vm.runtimeError("Stack overflow.")
	}

	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.function = fn
	frame.ip = 0
	frame.base = vm.sp - argCount - 1
	return nil
}

// callNative invokes a host function in place: the callee and
// arguments are replaced by the return value. A negative arity marks
// a variadic native.
func (vm *VM) callNative(n *Native, argCount int) error {
	if n.Arity >= 0 && argCount != n.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", n.Arity, argCount)
	}

	args := vm.stack[vm.sp-argCount : vm.sp]
	result, err := n.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}

	vm.sp -= argCount + 1
	vm.push(result)
	return nil
}
