// Package hdl emits the HDL (Verilog-style) target: a parameterized
// module, a self-checking testbench, and a timing-constraints file,
// grounded on the same per-target generator shape as internal/emit/hll.
//
// HDL has no native concept of multiple independent accumulators wired to
// one fixed port set, so the generated module always operates on the
// schema's primary delta field (internal/emit.PrimaryField) at its
// declared width, overridden by hardware.rtl_params.DATA_WIDTH when the
// schema declares one. When DATA_WIDTH is declared, the validator enforces
// that every field shares that width before a schema reaches this emitter;
// without DATA_WIDTH, fields of other widths are accepted and the module's
// single accumulator register models only the primary field.
package hdl

import (
	"fmt"
	"strings"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

const (
	opAccumulate  = 0
	opReconstruct = 1
	opRollback    = 2
)

// Emitter generates the HDL target.
type Emitter struct{}

// New returns an HDL Emitter.
func New() *Emitter { return &Emitter{} }

// Target implements emit.Emitter.
func (Emitter) Target() namespace.Target { return namespace.TargetHDL }

// Emit implements emit.Emitter.
func (Emitter) Emit(s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string) ([]artifact.Descriptor, error) {
	p := nm.Get(namespace.TargetHDL)
	base := strings.TrimSuffix(p.FilePath, ".v")

	module, testbench, constraints := render(s, p)

	var out []artifact.Descriptor
	for _, f := range []struct {
		path    string
		content string
	}{
		{p.FilePath, module},
		{base + "_tb.v", testbench},
		{base + ".sdc", constraints},
	} {
		desc, err := emit.WriteFile(outputRoot, string(namespace.TargetHDL), f.path, []byte(f.content))
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

func dataWidth(s *schema.Schema) int {
	if s.Hardware != nil && s.Hardware.RTLParams != nil && s.Hardware.RTLParams.DataWidth != nil {
		return *s.Hardware.RTLParams.DataWidth
	}
	_, field := emit.PrimaryField(s)
	return field.Width
}

func clockName(s *schema.Schema) string {
	if s.Hardware != nil && s.Hardware.ClockName != "" {
		return s.Hardware.ClockName
	}
	return "clk"
}

func targetFrequencyMHz(s *schema.Schema) float64 {
	if s.Body.Constraints != nil && s.Body.Constraints.TargetFrequencyMHz > 0 {
		return s.Body.Constraints.TargetFrequencyMHz
	}
	return schema.DefaultTargetFrequencyMHz
}

func render(s *schema.Schema, p namespace.Projection) (module, testbench, constraints string) {
	width := dataWidth(s)
	depth := 0
	if s.Body.Operations.Rollback != nil {
		depth = s.Body.Operations.Rollback.HistoryDepth
	}
	clk := clockName(s)
	historyAddrBits := addrBits(depth)

	var m strings.Builder
	fmt.Fprintf(&m, "// %s delta-state primitive for %s/%s, catalogue version %s.\n",
		p.ModuleSymbol, s.Catalogue.Vertical, s.Catalogue.Field, s.Catalogue.Version)
	fmt.Fprintf(&m, "module %s #(\n    parameter DATA_WIDTH = %d\n) (\n", p.ModuleSymbol, width)
	fmt.Fprintf(&m, "    input  wire                  %s,\n", clk)
	m.WriteString("    input  wire                  rst_n,\n")
	m.WriteString("    input  wire [1:0]            operation,\n")
	m.WriteString("    input  wire [DATA_WIDTH-1:0] data_in,\n")
	m.WriteString("    output reg  [DATA_WIDTH-1:0] data_out,\n")
	m.WriteString("    output reg                   data_ready,\n")
	m.WriteString("    output wire                   accumulator_zero\n")
	m.WriteString(");\n\n")
	fmt.Fprintf(&m, "    localparam OP_ACCUMULATE  = 2'd%d;\n", opAccumulate)
	fmt.Fprintf(&m, "    localparam OP_RECONSTRUCT = 2'd%d;\n", opReconstruct)
	fmt.Fprintf(&m, "    localparam OP_ROLLBACK    = 2'd%d;\n\n", opRollback)

	m.WriteString("    reg [DATA_WIDTH-1:0] initial_state;\n")
	m.WriteString("    reg [DATA_WIDTH-1:0] accumulator;\n")
	if depth > 0 {
		fmt.Fprintf(&m, "    reg [DATA_WIDTH-1:0] history [0:%d];\n", depth-1)
		fmt.Fprintf(&m, "    reg [%d:0] history_count;\n\n", historyAddrBits)
	} else {
		m.WriteString("\n")
	}

	m.WriteString("    assign accumulator_zero = (accumulator == {DATA_WIDTH{1'b0}});\n\n")

	fmt.Fprintf(&m, "    always @(posedge %s or negedge rst_n) begin\n", clk)
	m.WriteString("        if (!rst_n) begin\n")
	m.WriteString("            initial_state <= {DATA_WIDTH{1'b0}};\n")
	m.WriteString("            accumulator   <= {DATA_WIDTH{1'b0}};\n")
	if depth > 0 {
		m.WriteString("            history_count <= 0;\n")
	}
	m.WriteString("            data_out      <= {DATA_WIDTH{1'b0}};\n")
	m.WriteString("            data_ready    <= 1'b0;\n")
	m.WriteString("        end else begin\n")
	m.WriteString("            data_ready <= 1'b0;\n")
	m.WriteString("            case (operation)\n")
	m.WriteString("                OP_ACCUMULATE: begin\n")
	m.WriteString("                    accumulator <= accumulator ^ data_in;\n")
	if depth > 0 {
		fmt.Fprintf(&m, "                    history[history_count %% %d] <= data_in;\n", depth)
		fmt.Fprintf(&m, "                    if (history_count < %d) history_count <= history_count + 1;\n", depth)
	}
	m.WriteString("                    data_out   <= accumulator ^ data_in;\n")
	m.WriteString("                    data_ready <= 1'b1;\n")
	m.WriteString("                end\n")
	if s.Body.Operations.Reconstruct != nil {
		m.WriteString("                OP_RECONSTRUCT: begin\n")
		m.WriteString("                    data_out   <= initial_state ^ accumulator;\n")
		m.WriteString("                    data_ready <= 1'b1;\n")
		m.WriteString("                end\n")
	}
	if depth > 0 {
		m.WriteString("                OP_ROLLBACK: begin\n")
		m.WriteString("                    if (history_count > 0) begin\n")
		fmt.Fprintf(&m, "                        accumulator   <= accumulator ^ history[(history_count - 1) %% %d];\n", depth)
		m.WriteString("                        history_count <= history_count - 1;\n")
		m.WriteString("                    end\n")
		m.WriteString("                    data_out   <= accumulator;\n")
		m.WriteString("                    data_ready <= 1'b1;\n")
		m.WriteString("                end\n")
	}
	m.WriteString("                default: data_ready <= 1'b0;\n")
	m.WriteString("            endcase\n")
	m.WriteString("        end\n")
	m.WriteString("    end\n\n")
	fmt.Fprintf(&m, "endmodule\n")

	var tb strings.Builder
	fmt.Fprintf(&tb, "// Self-checking testbench for %s.\n", p.ModuleSymbol)
	fmt.Fprintf(&tb, "module %s_tb;\n", p.ModuleSymbol)
	fmt.Fprintf(&tb, "    reg                     %s = 0;\n", clk)
	tb.WriteString("    reg                     rst_n = 0;\n")
	tb.WriteString("    reg  [1:0]              operation;\n")
	fmt.Fprintf(&tb, "    reg  [%d:0]             data_in;\n", width-1)
	fmt.Fprintf(&tb, "    wire [%d:0]             data_out;\n", width-1)
	tb.WriteString("    wire                    data_ready;\n")
	tb.WriteString("    wire                    accumulator_zero;\n\n")

	fmt.Fprintf(&tb, "    %s #(.DATA_WIDTH(%d)) dut (\n", p.ModuleSymbol, width)
	fmt.Fprintf(&tb, "        .%s(%s),\n", clk, clk)
	tb.WriteString("        .rst_n(rst_n),\n        .operation(operation),\n        .data_in(data_in),\n")
	tb.WriteString("        .data_out(data_out),\n        .data_ready(data_ready),\n        .accumulator_zero(accumulator_zero)\n    );\n\n")

	fmt.Fprintf(&tb, "    always #5 %s = ~%s;\n\n", clk, clk)
	tb.WriteString("    initial begin\n")
	tb.WriteString("        rst_n = 0; operation = 2'd0; data_in = 0;\n")
	tb.WriteString("        #12 rst_n = 1;\n")
	tb.WriteString("        #10 operation = OP_ACCUMULATE_TB; data_in = {DATA_WIDTH_TB{1'b1}};\n")
	tb.WriteString("        #10 operation = OP_ACCUMULATE_TB; data_in = {DATA_WIDTH_TB{1'b1}};\n")
	tb.WriteString("        // self-inverse: XOR-ing the same delta twice must restore accumulator_zero\n")
	tb.WriteString("        #10 if (!accumulator_zero) $fatal(1, \"self-inverse property violated\");\n")
	tb.WriteString("        #10 $finish;\n")
	tb.WriteString("    end\n")
	tb.WriteString("endmodule\n")
	tbSrc := tb.String()
	tbSrc = strings.ReplaceAll(tbSrc, "OP_ACCUMULATE_TB", fmt.Sprintf("2'd%d", opAccumulate))
	tbSrc = strings.ReplaceAll(tbSrc, "DATA_WIDTH_TB", fmt.Sprintf("%d", width))

	var c strings.Builder
	fmt.Fprintf(&c, "# Timing constraints for %s\n", p.ModuleSymbol)
	period := 1000.0 / targetFrequencyMHz(s)
	fmt.Fprintf(&c, "create_clock -name %s -period %.3f [get_ports %s]\n", clk, period, clk)

	return m.String(), tbSrc, c.String()
}

func addrBits(depth int) int {
	bits := 0
	for (1 << bits) < depth {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}
