/*
Package component models one rendered component instance: its identity
(execName), its state, the handle of its subtree in the document and the
placeholder maps locating its children.

Instances are created from producer markup or from elements already present in
the document, mounted once their subtree is on the document, and unmounted when
superseded or removed. Mounting activates the directive layer through a Binder;
unmounting releases it together with the timers the instance owns.
*/
package component
