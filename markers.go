package secs

import (
	"strings"
)

// TypeTag identifies one well-known host node class. Mirror entities carry
// a NodeTypes component with a bit per tag, so queries can filter on host
// type ("all sprites", "all 2D physics bodies") without resolving nodes.
type TypeTag uint8

const (
	// Base classes; every node gets TagNode, spatial nodes additionally get
	// their dimensionality tag.
	TagNode TypeTag = iota
	TagNode2D
	TagNode3D
	TagControl
	TagCanvasItem

	// 2D subtypes.
	TagSprite2D
	TagAnimatedSprite2D
	TagMeshInstance2D
	TagCharacterBody2D
	TagRigidBody2D
	TagStaticBody2D
	TagArea2D
	TagCollisionShape2D
	TagCollisionPolygon2D
	TagAudioStreamPlayer2D
	TagCamera2D
	TagPath2D
	TagPathFollow2D

	// 3D subtypes.
	TagSprite3D
	TagMeshInstance3D
	TagCharacterBody3D
	TagRigidBody3D
	TagStaticBody3D
	TagArea3D
	TagCollisionShape3D
	TagAudioStreamPlayer3D
	TagCamera3D
	TagPath3D
	TagPathFollow3D
	TagDirectionalLight3D
	TagSpotLight3D

	// Control subtypes.
	TagLabel
	TagButton
	TagLineEdit
	TagTextEdit
	TagPanel

	// Dimension-independent node types.
	TagAudioStreamPlayer
	TagAnimationPlayer
	TagAnimationTree
	TagTimer

	tagCount
)

// tagClasses maps each subtype tag to the host class it probes for. Base
// classes are handled separately because they branch the probe.
var tagClasses = [tagCount]string{
	TagNode:       "Node",
	TagNode2D:     "Node2D",
	TagNode3D:     "Node3D",
	TagControl:    "Control",
	TagCanvasItem: "CanvasItem",

	TagSprite2D:            "Sprite2D",
	TagAnimatedSprite2D:    "AnimatedSprite2D",
	TagMeshInstance2D:      "MeshInstance2D",
	TagCharacterBody2D:     "CharacterBody2D",
	TagRigidBody2D:         "RigidBody2D",
	TagStaticBody2D:        "StaticBody2D",
	TagArea2D:              "Area2D",
	TagCollisionShape2D:    "CollisionShape2D",
	TagCollisionPolygon2D:  "CollisionPolygon2D",
	TagAudioStreamPlayer2D: "AudioStreamPlayer2D",
	TagCamera2D:            "Camera2D",
	TagPath2D:              "Path2D",
	TagPathFollow2D:        "PathFollow2D",

	TagSprite3D:            "Sprite3D",
	TagMeshInstance3D:      "MeshInstance3D",
	TagCharacterBody3D:     "CharacterBody3D",
	TagRigidBody3D:         "RigidBody3D",
	TagStaticBody3D:        "StaticBody3D",
	TagArea3D:              "Area3D",
	TagCollisionShape3D:    "CollisionShape3D",
	TagAudioStreamPlayer3D: "AudioStreamPlayer3D",
	TagCamera3D:            "Camera3D",
	TagPath3D:              "Path3D",
	TagPathFollow3D:        "PathFollow3D",
	TagDirectionalLight3D:  "DirectionalLight3D",
	TagSpotLight3D:         "SpotLight3D",

	TagLabel:    "Label",
	TagButton:   "Button",
	TagLineEdit: "LineEdit",
	TagTextEdit: "TextEdit",
	TagPanel:    "Panel",

	TagAudioStreamPlayer: "AudioStreamPlayer",
	TagAnimationPlayer:   "AnimationPlayer",
	TagAnimationTree:     "AnimationTree",
	TagTimer:             "Timer",
}

var tags2D = []TypeTag{
	TagSprite2D, TagAnimatedSprite2D, TagMeshInstance2D, TagCharacterBody2D,
	TagRigidBody2D, TagStaticBody2D, TagArea2D, TagCollisionShape2D,
	TagCollisionPolygon2D, TagAudioStreamPlayer2D, TagCamera2D, TagPath2D,
	TagPathFollow2D,
}

var tags3D = []TypeTag{
	TagSprite3D, TagMeshInstance3D, TagCharacterBody3D, TagRigidBody3D,
	TagStaticBody3D, TagArea3D, TagCollisionShape3D, TagAudioStreamPlayer3D,
	TagCamera3D, TagPath3D, TagPathFollow3D, TagDirectionalLight3D,
	TagSpotLight3D,
}

var tagsControl = []TypeTag{
	TagLabel, TagButton, TagLineEdit, TagTextEdit, TagPanel,
}

var tagsUniversal = []TypeTag{
	TagAudioStreamPlayer, TagAnimationPlayer, TagAnimationTree, TagTimer,
}

// String returns the host class name the tag stands for.
func (t TypeTag) String() string {
	if t < tagCount {
		return tagClasses[t]
	}
	return "TypeTag(?)"
}

// NodeTypes is the mirror component recording which well-known host classes
// a node inherits from. It is written once when the mirror entity is created
// and read-only afterward.
type NodeTypes struct {
	mask Bitmask
}

// Is reports whether the node inherits the class the tag stands for.
func (n *NodeTypes) Is(tag TypeTag) bool {
	return n.mask.Has(uint8(tag))
}

// Tags returns the set tags in ascending order.
func (n *NodeTypes) Tags() []TypeTag {
	idx := n.mask.Indices()
	out := make([]TypeTag, len(idx))
	for i, id := range idx {
		out[i] = TypeTag(id)
	}
	return out
}

// String lists the tag class names.
func (n *NodeTypes) String() string {
	tags := n.Tags()
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

// probeNodeTypes classifies a node. The probe branches on the base class
// first so a 2D node is never tested against the 3D subtype list; subtype
// checks use Inherits, so a user subclass of CharacterBody2D still gets the
// CharacterBody2D tag.
func probeNodeTypes(n SceneNode) NodeTypes {
	var types NodeTypes
	types.mask.Set(uint8(TagNode))

	switch {
	case n.Inherits("Node3D"):
		types.mask.Set(uint8(TagNode3D))
		for _, tag := range tags3D {
			if n.Inherits(tagClasses[tag]) {
				types.mask.Set(uint8(tag))
			}
		}
	case n.Inherits("Control"):
		types.mask.Set(uint8(TagControl))
		types.mask.Set(uint8(TagCanvasItem))
		for _, tag := range tagsControl {
			if n.Inherits(tagClasses[tag]) {
				types.mask.Set(uint8(tag))
			}
		}
	case n.Inherits("Node2D"):
		types.mask.Set(uint8(TagNode2D))
		types.mask.Set(uint8(TagCanvasItem))
		for _, tag := range tags2D {
			if n.Inherits(tagClasses[tag]) {
				types.mask.Set(uint8(tag))
			}
		}
	case n.Inherits("CanvasItem"):
		types.mask.Set(uint8(TagCanvasItem))
	}

	for _, tag := range tagsUniversal {
		if n.Inherits(tagClasses[tag]) {
			types.mask.Set(uint8(tag))
		}
	}

	return types
}
