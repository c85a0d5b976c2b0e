// Command sentra-core is a small driver for smoke-testing the engine:
// it assembles a handful of hand-built Chunks (there is no surface
// parser/compiler in this module, §1) and runs each through the
// interpreter, wiring every stdlib collaborator's Register function
// into a shared registry first so task/sequence-typed results print
// the way a script author would expect.
package main

import (
	"flag"
	"fmt"
	"os"

	"sentracore/internal/bytecode"
	"sentracore/internal/container"
	"sentracore/internal/interp"
	"sentracore/internal/iterate"
	"sentracore/internal/schedule"
	"sentracore/internal/seqfn"
	"sentracore/internal/task"
	"sentracore/internal/types"

	"sentracore/stdlib/db"
	"sentracore/stdlib/file"
	"sentracore/stdlib/ident"
	"sentracore/stdlib/netsock"
)

var demos = map[string]func(*schedule.Scheduler) *bytecode.Chunk{
	"sum":    sumDemo,
	"fold":   foldDemo,
	"unique": uniqueDemo,
	"tasks":  tasksDemo,
}

func main() {
	name := flag.String("demo", "sum", "which built-in demo chunk to run (sum, fold, unique, tasks)")
	flag.Parse()

	build, ok := demos[*name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown demo %q (available: sum, fold, unique, tasks)\n", *name)
		os.Exit(1)
	}

	reg := types.NewRegistry()
	file.Register(reg)
	db.Register(reg)
	netsock.Register(reg)
	ident.Register(reg)

	sched := schedule.New()
	chunk := build(sched)
	result := run(chunk, sched)
	fmt.Println(types.NumberString(types.Deref(result)))
}

// run drives chunk to completion and then drains the scheduler, the
// same two-step sequence the task package's tests use: a chunk may
// return having only kicked off background work (a task, a parallel
// fan-out) that completes through scheduled continuations afterward.
func run(chunk *bytecode.Chunk, sched *schedule.Scheduler) types.Value {
	result := interp.Run(chunk, 0, nil)
	sched.Drain()
	return result
}

func sumDemo(*schedule.Scheduler) *bytecode.Chunk {
	chunk := bytecode.NewChunk()
	list := container.NewList()
	for _, n := range []int64{1, 2, 3, 4, 5} {
		list.Append(types.Int{V: n})
	}
	listIdx := chunk.AddConstant(list)
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(listIdx))
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpConstCall)
	chunk.WriteByte(1)
	chunk.WriteUint16(uint16(chunk.AddConstant(seqfn.Sum)))
	chunk.WriteOp(bytecode.OpReturn)
	return chunk
}

func foldDemo(*schedule.Scheduler) *bytecode.Chunk {
	chunk := bytecode.NewChunk()
	list := container.NewList()
	for _, n := range []int64{1, 2, 3, 4} {
		list.Append(types.Int{V: n})
	}
	times := types.NewBuiltin("*", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, types.Mul(args[0], args[1])
	})
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(chunk.AddConstant(list)))
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(chunk.AddConstant(times)))
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpConstCall)
	chunk.WriteByte(2)
	chunk.WriteUint16(uint16(chunk.AddConstant(seqfn.Fold)))
	chunk.WriteOp(bytecode.OpReturn)
	return chunk
}

func uniqueDemo(*schedule.Scheduler) *bytecode.Chunk {
	chunk := bytecode.NewChunk()
	list := container.NewList()
	for _, n := range []int64{1, 1, 2, 3, 3, 3, 4} {
		list.Append(types.Int{V: n})
	}
	uniqueCtor := types.NewBuiltin("unique", func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		return caller, iterate.NewUnique(args[0])
	})
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(chunk.AddConstant(list)))
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpConstCall)
	chunk.WriteByte(1)
	chunk.WriteUint16(uint16(chunk.AddConstant(uniqueCtor)))
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpConstCall)
	chunk.WriteByte(1)
	chunk.WriteUint16(uint16(chunk.AddConstant(seqfn.Count)))
	chunk.WriteOp(bytecode.OpReturn)
	return chunk
}

// tasksDemo builds a task with task.New/Done directly (there is no
// TASK opcode — tasks are a stdlib-level value, constructed the way a
// module's Register function would wire one in) and returns its
// already-resolved value, exercising the scheduler drain path even
// though this particular task never actually parks anyone.
func tasksDemo(sched *schedule.Scheduler) *bytecode.Chunk {
	chunk := bytecode.NewChunk()
	t := task.New(sched)
	t.Done(types.Int{V: 7})
	chunk.WriteOp(bytecode.OpLoad)
	chunk.WriteUint16(uint16(chunk.AddConstant(t)))
	chunk.WriteOp(bytecode.OpPush)
	chunk.WriteOp(bytecode.OpCall)
	chunk.WriteByte(0)
	chunk.WriteOp(bytecode.OpReturn)
	return chunk
}
