/*
Package queue batches the commands waiting for the next request.

Init commands for the same component are coalesced by merging their params
along dotted paths ("filter.name" writes into the nested "filter" object);
Call and Emit commands are appended verbatim, and the relative order of every
command is preserved. Drain hands the whole batch over in one step.
*/
package queue
