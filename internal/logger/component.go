// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "os"

const (
	KeyMessage    = "message"
	KeyComponent  = "component"
	KeyDurationMS = "durationMS"
	KeySize       = "size"
	KeyDocuments  = "documents"
	KeyOffset     = "offset"
	KeyErrorKind  = "errorKind"
	KeyFailure    = "failure"
)

// KeyValues is a list of key-value pairs.
type KeyValues []interface{}

// Add adds a key-value pair to an instance of a KeyValues list.
func (kvs *KeyValues) Add(key string, value interface{}) {
	*kvs = append(*kvs, key, value)
}

// Component is an enumeration representing the "components" which can be logged against. A
// LogLevel can be configured on a per-component basis.
type Component int

const (
	// ComponentAll enables logging for all components.
	ComponentAll Component = iota

	// ComponentEncode enables logging of the size and serialize passes.
	ComponentEncode

	// ComponentDecode enables logging of the deserializer.
	ComponentDecode
)

// ComponentLiteral is an enumeration representing the string literal "components" which can be
// logged against.
type ComponentLiteral string

const (
	ComponentLiteralAll    ComponentLiteral = "all"
	ComponentLiteralEncode ComponentLiteral = "encode"
	ComponentLiteralDecode ComponentLiteral = "decode"
)

// Component returns the Component for the given ComponentLiteral.
func (componentLiteral ComponentLiteral) Component() Component {
	switch componentLiteral {
	case ComponentLiteralEncode:
		return ComponentEncode
	case ComponentLiteralDecode:
		return ComponentDecode
	default:
		return ComponentAll
	}
}

func (c Component) String() string {
	switch c {
	case ComponentEncode:
		return string(ComponentLiteralEncode)
	case ComponentDecode:
		return string(ComponentLiteralDecode)
	default:
		return string(ComponentLiteralAll)
	}
}

// componentEnvVar is an enumeration representing the environment variables which can be used to
// configure a component's log level.
type componentEnvVar string

const (
	componentEnvVarAll    componentEnvVar = "BSONNATIVE_LOG_ALL"
	componentEnvVarEncode componentEnvVar = "BSONNATIVE_LOG_ENCODE"
	componentEnvVarDecode componentEnvVar = "BSONNATIVE_LOG_DECODE"
)

// allComponentEnvVars lists ComponentAll first so the per-component variables take precedence.
var allComponentEnvVars = []componentEnvVar{
	componentEnvVarAll,
	componentEnvVarEncode,
	componentEnvVarDecode,
}

func (env componentEnvVar) component() Component {
	switch env {
	case componentEnvVarEncode:
		return ComponentEncode
	case componentEnvVarDecode:
		return ComponentDecode
	default:
		return ComponentAll
	}
}

// getEnvComponentLevels returns the component levels configured in the environment. A level set
// on BSONNATIVE_LOG_ALL applies to every component that has no level of its own.
func getEnvComponentLevels() map[Component]Level {
	levels := make(map[Component]Level)

	var all Level
	for _, envVar := range allComponentEnvVars {
		str, ok := os.LookupEnv(string(envVar))
		if !ok {
			continue
		}
		level := ParseLevel(str)
		if envVar.component() == ComponentAll {
			all = level
			continue
		}
		levels[envVar.component()] = level
	}

	if all != LevelOff {
		for _, c := range []Component{ComponentEncode, ComponentDecode} {
			if _, ok := levels[c]; !ok {
				levels[c] = all
			}
		}
	}

	return levels
}

// mergeComponentLevels merges the given maps in a last one wins fashion. Levels set on
// ComponentAll are expanded to the individual components.
func mergeComponentLevels(componentLevels ...map[Component]Level) map[Component]Level {
	merged := make(map[Component]Level)
	for _, levels := range componentLevels {
		if all, ok := levels[ComponentAll]; ok {
			merged[ComponentEncode] = all
			merged[ComponentDecode] = all
		}
		for component, level := range levels {
			if component == ComponentAll {
				continue
			}
			merged[component] = level
		}
	}

	return merged
}
