// definitions_hcl.go: HCL decoding of argument definitions
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclDefinitionsFile is the root schema: any number of argument blocks
type hclDefinitionsFile struct {
	Arguments []hclArgument `hcl:"argument,block"`
}

type hclArgument struct {
	Name        string `hcl:"name,label"`
	Type        string `hcl:"type,optional"`
	Required    bool   `hcl:"required,optional"`
	Description string `hcl:"description,optional"`
}

// parseHCLDefinitions decodes argument blocks from HCL source
func parseHCLDefinitions(data []byte, filename string) (Definitions, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed hclDefinitionsFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}

	definitions := make(Definitions, 0, len(parsed.Arguments))
	for _, argument := range parsed.Arguments {
		definitions = append(definitions, Definition(argument))
	}
	return definitions, nil
}
