package compiler

import (
	"strings"
	"testing"

	"regvm/asmlink"
	"regvm/system"
)

// runAssembly assembles, loads, and runs one compiled unit to completion,
// returning the program's exit code.
func runAssembly(t *testing.T, asm string) int32 {
	t.Helper()
	exe, err := asmlink.Assemble([]string{asm})
	if err != nil {
		t.Fatalf("assemble: %v\n--- asm ---\n%s", err, asm)
	}
	c := system.NewCpu()
	system.Load(c, exe)
	con := system.NewConsole(new(strings.Builder), strings.NewReader(""))
	exitCode, err := system.Run(c, con)
	if err != nil {
		t.Fatalf("run: %v\n--- asm ---\n%s", err, asm)
	}
	return exitCode
}

func TestCompileReturnConstant(t *testing.T) {
	ast := `{"ext":[
		{"_nodetype":"FuncDef",
		 "decl":{"name":"main","type":{"_nodetype":"FuncDecl","args":null,
			"type":{"_nodetype":"TypeDecl","type":{"_nodetype":"IdentifierType","names":["int"]}}}},
		 "body":{"_nodetype":"Compound","block_items":[
			{"_nodetype":"Return","expr":{"_nodetype":"Constant","type":"int","value":"2"}}
		 ]}
		}
	]}`

	asm, err := Compile([]byte(ast))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := runAssembly(t, asm); got != 2 {
		t.Fatalf("expected exit code 2, got %d", got)
	}
}

// TestCompileRecursiveFibonacci lowers:
//
//	int fib(int n) {
//	    if (n <= 1) return n;
//	    return fib(n - 1) + fib(n - 2);
//	}
//	int main() { return fib(6); }
//
// and checks the well-known fib(6) == 8.
func TestCompileRecursiveFibonacci(t *testing.T) {
	id := func(name string) string {
		return `{"_nodetype":"ID","name":"` + name + `"}`
	}
	constInt := func(v string) string {
		return `{"_nodetype":"Constant","type":"int","value":"` + v + `"}`
	}
	binOp := func(op, left, right string) string {
		return `{"_nodetype":"BinaryOp","op":"` + op + `","left":` + left + `,"right":` + right + `}`
	}
	call := func(name, argsJSON string) string {
		return `{"_nodetype":"FuncCall","name":` + id(name) + `,"args":{"_nodetype":"ExprList","exprs":[` + argsJSON + `]}}`
	}

	fibMinus1 := binOp("-", id("n"), constInt("1"))
	fibMinus2 := binOp("-", id("n"), constInt("2"))
	sumCalls := binOp("+", call("fib", fibMinus1), call("fib", fibMinus2))

	ast := `{"ext":[
		{"_nodetype":"FuncDef",
		 "decl":{"name":"fib","type":{"_nodetype":"FuncDecl",
			"args":{"_nodetype":"ParamList","params":[
				{"name":"n","type":{"_nodetype":"TypeDecl","type":{"_nodetype":"IdentifierType","names":["int"]}}}
			]},
			"type":{"_nodetype":"TypeDecl","type":{"_nodetype":"IdentifierType","names":["int"]}}}},
		 "body":{"_nodetype":"Compound","block_items":[
			{"_nodetype":"If",
			 "cond":` + binOp("<=", id("n"), constInt("1")) + `,
			 "iftrue":{"_nodetype":"Compound","block_items":[
				{"_nodetype":"Return","expr":` + id("n") + `}
			 ]},
			 "iffalse":null},
			{"_nodetype":"Return","expr":` + sumCalls + `}
		 ]}
		},
		{"_nodetype":"FuncDef",
		 "decl":{"name":"main","type":{"_nodetype":"FuncDecl","args":null,
			"type":{"_nodetype":"TypeDecl","type":{"_nodetype":"IdentifierType","names":["int"]}}}},
		 "body":{"_nodetype":"Compound","block_items":[
			{"_nodetype":"Return","expr":` + call("fib", constInt("6")) + `}
		 ]}
		}
	]}`

	asm, err := Compile([]byte(ast))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := runAssembly(t, asm); got != 8 {
		t.Fatalf("expected fib(6)==8, got %d\n--- asm ---\n%s", got, asm)
	}
}

func TestCompileWhileLoopAccumulator(t *testing.T) {
	id := func(name string) string {
		return `{"_nodetype":"ID","name":"` + name + `"}`
	}
	constInt := func(v string) string {
		return `{"_nodetype":"Constant","type":"int","value":"` + v + `"}`
	}
	binOp := func(op, left, right string) string {
		return `{"_nodetype":"BinaryOp","op":"` + op + `","left":` + left + `,"right":` + right + `}`
	}
	assign := func(op, lvalue, rvalue string) string {
		return `{"_nodetype":"Assignment","op":"` + op + `","lvalue":` + lvalue + `,"rvalue":` + rvalue + `}`
	}

	// int main() {
	//     int sum;
	//     int i;
	//     sum = 0;
	//     i = 0;
	//     while (i < 5) {
	//         sum = sum + i;
	//         i = i + 1;
	//     }
	//     return sum;
	// }
	ast := `{"ext":[
		{"_nodetype":"FuncDef",
		 "decl":{"name":"main","type":{"_nodetype":"FuncDecl","args":null,
			"type":{"_nodetype":"TypeDecl","type":{"_nodetype":"IdentifierType","names":["int"]}}}},
		 "body":{"_nodetype":"Compound","block_items":[
			{"_nodetype":"Decl","name":"sum","type":{"_nodetype":"TypeDecl","type":{"_nodetype":"IdentifierType","names":["int"]}},"init":null},
			{"_nodetype":"Decl","name":"i","type":{"_nodetype":"TypeDecl","type":{"_nodetype":"IdentifierType","names":["int"]}},"init":null},
			{"_nodetype":"Assignment","op":"=","lvalue":` + id("sum") + `,"rvalue":` + constInt("0") + `},
			{"_nodetype":"Assignment","op":"=","lvalue":` + id("i") + `,"rvalue":` + constInt("0") + `},
			{"_nodetype":"While",
			 "cond":` + binOp("<", id("i"), constInt("5")) + `,
			 "stmt":{"_nodetype":"Compound","block_items":[
				` + assign("=", id("sum"), binOp("+", id("sum"), id("i"))) + `,
				` + assign("=", id("i"), binOp("+", id("i"), constInt("1"))) + `
			 ]}
			},
			{"_nodetype":"Return","expr":` + id("sum") + `}
		 ]}
		}
	]}`

	asm, err := Compile([]byte(ast))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// 0+1+2+3+4 == 10
	if got := runAssembly(t, asm); got != 10 {
		t.Fatalf("expected sum==10, got %d\n--- asm ---\n%s", got, asm)
	}
}
