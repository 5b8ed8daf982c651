// Package hcs1 addresses and reads files stored with the HCS-1 file
// standard, where a file lives in the messages of its own consensus topic
// and is referenced as hcs://1/<topicID>.
package hcs1
