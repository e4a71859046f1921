/*
Package domain contains the core models shared by the page generator.

It defines what the synchronizer reads and produces: wiki page descriptors,
inventory entities, class metadata, render contexts and the run state that
accumulates page information across a run. This package is kept pure and free
of I/O, following Hexagonal Architecture principles; talking to the wiki,
the inventory or the filesystem is the job of ports and adapters.

# Key Entities

  - Page: A wiki page descriptor, owned by the wiki and only referenced here.
  - Entity: One inventory item (a device) with its class reference and metadata.
  - ClassInfo: Structured metadata about a device class (name, docstring, parameters).
  - RenderContext: The values a template renders against.
  - RunState: Per-entity page information accumulated during one run.
  - NodeResult: The outcome of synchronizing one page-tree node.
*/
package domain
