// Package model defines the declarative modal configuration consumed by the
// registry, resolver and modal packages. A ModalConfig holds an ordered list
// of FieldDescriptor values plus optional hooks (BeforeShow, OnSubmit) and
// footer buttons. File-based configurations cannot carry Go functions, so
// every hook also has a string counterpart (`beforeShow`, `onSubmit`,
// `onChange`, `onClick`, `verify.hook`) that the registry binds against a
// Hooks table after loading.
//
// Configurations are treated as immutable once registered: resolvers and
// modal instances work on copies produced by Clone and ApplyOverride.
package model
